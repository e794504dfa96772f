package api

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/frames"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/util"

	"google.golang.org/grpc/codes"
)

// Upper bound on the size of request bodies.
const maximumRequestSizeBytes = 16 << 20

// simulationRequest is the body of requests to both /simulate and
// /simulate_all. Fields are kept in their raw form, so that type
// errors can be reported with the appropriate error kind.
type simulationRequest struct {
	ReferenceString json.RawMessage `json:"reference_string"`
	Frames          json.RawMessage `json:"frames"`
	Algorithm       *string         `json:"algorithm"`
}

// simulation is a fully validated simulation request.
type simulation struct {
	sequence reference.Sequence
	capacity int
	policy   eviction.Policy
}

type requestDecoder struct {
	parser        *reference.Parser
	maximumFrames int
}

func (d *requestDecoder) decode(body io.Reader, withAlgorithm bool) (*simulation, error) {
	data, err := io.ReadAll(io.LimitReader(body, maximumRequestSizeBytes+1))
	if err != nil {
		return nil, util.StatusWrapWithCode(err, codes.InvalidArgument, "Failed to read request body")
	}
	if len(data) > maximumRequestSizeBytes {
		return nil, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Request body exceeds %d bytes", maximumRequestSizeBytes)
	}
	var request simulationRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Request body is not a valid JSON object: %s", err)
	}

	sequence, err := d.decodeReferenceString(request.ReferenceString)
	if err != nil {
		return nil, util.StatusWrap(err, "Invalid reference_string")
	}
	capacity, err := d.decodeFrames(request.Frames)
	if err != nil {
		return nil, util.StatusWrap(err, "Invalid frames")
	}
	s := &simulation{
		sequence: sequence,
		capacity: capacity,
		policy:   eviction.FirstInFirstOut,
	}
	if withAlgorithm && request.Algorithm != nil {
		policy, err := eviction.ParsePolicy(*request.Algorithm)
		if err != nil {
			return nil, util.StatusWrap(err, "Invalid algorithm")
		}
		s.policy = policy
	}
	return s, nil
}

// decodeReferenceString converts the reference string of a request to
// a sequence. It may either be a string containing delimited page
// identifiers, or an array of strings and numbers.
func (d *requestDecoder) decodeReferenceString(raw json.RawMessage) (reference.Sequence, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return reference.Sequence{}, util.NewKindError(codes.InvalidArgument, util.ErrorKindMalformedInput, "Field is required")
	}
	switch raw[0] {
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return reference.Sequence{}, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Malformed string: %s", err)
		}
		return d.parser.Parse(text)
	case '[':
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		var elements []interface{}
		if err := decoder.Decode(&elements); err != nil {
			return reference.Sequence{}, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Malformed array: %s", err)
		}
		tokens := make([]string, 0, len(elements))
		for i, element := range elements {
			switch v := element.(type) {
			case string:
				tokens = append(tokens, v)
			case json.Number:
				tokens = append(tokens, v.String())
			default:
				return reference.Sequence{}, util.KindErrorf(codes.InvalidArgument, util.ErrorKindMalformedInput, "Reference %d: Page identifier must be a string or a number", i+1)
			}
		}
		return d.parser.ParseTokens(tokens)
	default:
		return reference.Sequence{}, util.NewKindError(codes.InvalidArgument, util.ErrorKindMalformedInput, "Field must be a string or an array")
	}
}

// decodeFrames converts the number of frames of a request to an
// integer. Fractional numbers and values of other types are rejected.
func (d *requestDecoder) decodeFrames(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, util.NewKindError(codes.InvalidArgument, util.ErrorKindInvalidCapacity, "Field is required")
	}
	capacity, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, util.KindErrorf(codes.InvalidArgument, util.ErrorKindInvalidCapacity, "Number of frames must be an integer, while %s was provided", raw)
	}
	if err := frames.ValidateCapacity(capacity); err != nil {
		return 0, err
	}
	if d.maximumFrames > 0 && capacity > d.maximumFrames {
		return 0, util.KindErrorf(codes.InvalidArgument, util.ErrorKindInvalidCapacity, "Number of frames must not exceed %d, while %d frames were requested", d.maximumFrames, capacity)
	}
	return capacity, nil
}
