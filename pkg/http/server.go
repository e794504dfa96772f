package http

import (
	"context"
	"net/http"
	"time"

	"github.com/buildbarn/bb-pagesim/pkg/util"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServerConfiguration contains the addresses on which a web server
// listens, and optionally the key pair used to serve HTTPS.
type ServerConfiguration struct {
	ListenAddresses []string                `json:"listenAddresses"`
	TLS             *ServerTLSConfiguration `json:"tls"`
}

// ServerTLSConfiguration refers to PEM files holding the certificate
// chain and private key of a web server.
type ServerTLSConfiguration struct {
	CertificatePath string `json:"certificatePath"`
	PrivateKeyPath  string `json:"privateKeyPath"`
}

// Upper bound on the time it may take to read request headers.
const readHeaderTimeout = 10 * time.Second

// NewServersFromConfigurationAndServe spawns HTTP servers as part of an
// errgroup.Group, based on a list of configurations. The web servers
// are shut down once the provided context is canceled.
func NewServersFromConfigurationAndServe(ctx context.Context, configurations []ServerConfiguration, handler http.Handler, group *errgroup.Group) error {
	for _, configuration := range configurations {
		if len(configuration.ListenAddresses) == 0 {
			return status.Error(codes.InvalidArgument, "HTTP server configuration does not contain any listen addresses")
		}
		tls := configuration.TLS
		if tls != nil && (tls.CertificatePath == "" || tls.PrivateKeyPath == "") {
			return status.Error(codes.InvalidArgument, "HTTPS configuration requires a certificate and private key path")
		}
		for _, listenAddress := range configuration.ListenAddresses {
			server := &http.Server{
				Addr:              listenAddress,
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			}
			group.Go(func() error {
				<-ctx.Done()
				return server.Shutdown(context.Background())
			})
			group.Go(func() error {
				var err error
				if tls != nil {
					err = server.ListenAndServeTLS(tls.CertificatePath, tls.PrivateKeyPath)
				} else {
					err = server.ListenAndServe()
				}
				if err != http.ErrServerClosed {
					return util.StatusWrapf(err, "Failed to launch HTTP server %#v", server.Addr)
				}
				return nil
			})
		}
	}
	return nil
}
