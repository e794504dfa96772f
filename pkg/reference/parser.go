package reference

import (
	"strconv"
	"strings"

	"github.com/buildbarn/bb-pagesim/pkg/util"

	"google.golang.org/grpc/codes"
)

// IdentifierKind determines how reference tokens are converted to page
// identifiers.
type IdentifierKind int

const (
	// IntegerIdentifiers requires every token to be a base-10
	// integer. Tokens are stored in canonical form, so that "007"
	// and "7" refer to the same page.
	IntegerIdentifiers IdentifierKind = iota
	// OpaqueIdentifiers accepts any non-empty token verbatim.
	OpaqueIdentifiers
)

// ParseIdentifierKind converts the name of an identifier kind, as used
// in configuration files, to an IdentifierKind.
func ParseIdentifierKind(name string) (IdentifierKind, error) {
	switch name {
	case "", "integer":
		return IntegerIdentifiers, nil
	case "opaque":
		return OpaqueIdentifiers, nil
	default:
		return 0, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Unknown page identifier kind %#v", name)
	}
}

// Parser of reference sequences that are provided in textual form.
type Parser struct {
	delimiter     string
	identifiers   IdentifierKind
	maximumLength int
}

// NewParser creates a Parser that splits input on a delimiter. If the
// delimiter is empty, input is split on runs of whitespace instead. A
// maximum length of zero permits sequences of any length.
func NewParser(delimiter string, identifiers IdentifierKind, maximumLength int) *Parser {
	return &Parser{
		delimiter:     delimiter,
		identifiers:   identifiers,
		maximumLength: maximumLength,
	}
}

// DefaultParser accepts comma separated integers, which is the format
// used by the web frontend.
var DefaultParser = NewParser(",", IntegerIdentifiers, 0)

// Delimiter returns the delimiter used to split textual input.
func (p *Parser) Delimiter() string {
	return p.delimiter
}

// Parse a reference sequence from text. Input that is empty or only
// consists of whitespace yields an empty sequence.
func (p *Parser) Parse(text string) (Sequence, error) {
	if strings.TrimSpace(text) == "" {
		return Sequence{}, nil
	}
	if p.delimiter == "" {
		return p.ParseTokens(strings.Fields(text))
	}
	return p.ParseTokens(strings.Split(text, p.delimiter))
}

// ParseTokens converts a reference sequence that has already been
// split into tokens. Each token is trimmed and converted the same way
// as by Parse().
func (p *Parser) ParseTokens(tokens []string) (Sequence, error) {
	if p.maximumLength > 0 && len(tokens) > p.maximumLength {
		return Sequence{}, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Reference sequence contains %d references, while at most %d are permitted", len(tokens), p.maximumLength)
	}
	pages := make([]PageID, 0, len(tokens))
	for i, token := range tokens {
		page, err := p.parseToken(token)
		if err != nil {
			return Sequence{}, util.StatusWrapf(err, "Reference %d", i+1)
		}
		pages = append(pages, page)
	}
	return Sequence{pages: pages}, nil
}

func (p *Parser) parseToken(token string) (PageID, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", util.NewKindError(codes.InvalidArgument, util.ErrorKindMalformedInput, "Page identifier is empty")
	}
	switch p.identifiers {
	case IntegerIdentifiers:
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return "", util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Page identifier %#v is not an integer", trimmed)
		}
		return PageID(strconv.FormatInt(v, 10)), nil
	default:
		return PageID(trimmed), nil
	}
}
