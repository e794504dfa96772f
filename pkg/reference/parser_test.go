package reference_test

import (
	"testing"

	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestParserParse(t *testing.T) {
	parser := reference.DefaultParser

	t.Run("RoundTrip", func(t *testing.T) {
		sequence, err := parser.Parse("1,2,3")
		require.NoError(t, err)
		require.Equal(t, []reference.PageID{"1", "2", "3"}, sequence.Pages())
		require.Equal(t, "1,2,3", sequence.Join(","))
	})

	t.Run("Whitespace", func(t *testing.T) {
		sequence, err := parser.Parse(" 7 ,\t2,  007 ")
		require.NoError(t, err)
		require.Equal(t, []reference.PageID{"7", "2", "7"}, sequence.Pages())
	})

	t.Run("EmptyInput", func(t *testing.T) {
		for _, input := range []string{"", "   ", "\n"} {
			sequence, err := parser.Parse(input)
			require.NoError(t, err)
			require.Equal(t, 0, sequence.Len())
		}
	})

	t.Run("EmptyToken", func(t *testing.T) {
		_, err := parser.Parse("1,,3")
		require.Equal(t, codes.InvalidArgument, status.Code(err))
		require.Equal(t, "Reference 2: Page identifier is empty", status.Convert(err).Message())
		require.Equal(t, util.ErrorKindMalformedInput, util.ErrorKindOf(err))
	})

	t.Run("TrailingDelimiter", func(t *testing.T) {
		_, err := parser.Parse("1,2, ")
		require.Equal(t, util.ErrorKindMalformedInput, util.ErrorKindOf(err))
	})

	t.Run("NotAnInteger", func(t *testing.T) {
		_, err := parser.Parse("1,two,3")
		require.Equal(t, "Reference 2: Page identifier \"two\" is not an integer", status.Convert(err).Message())
		require.Equal(t, util.ErrorKindMalformedInput, util.ErrorKindOf(err))
	})

	t.Run("WhitespaceDelimited", func(t *testing.T) {
		sequence, err := reference.NewParser("", reference.IntegerIdentifiers, 0).Parse("1 2\n3\t4")
		require.NoError(t, err)
		require.Equal(t, "1 2 3 4", sequence.Join(" "))
	})

	t.Run("OpaqueIdentifiers", func(t *testing.T) {
		sequence, err := reference.NewParser(";", reference.OpaqueIdentifiers, 0).Parse("a; b ;0x1f")
		require.NoError(t, err)
		require.Equal(t, []reference.PageID{"a", "b", "0x1f"}, sequence.Pages())
	})

	t.Run("MaximumLength", func(t *testing.T) {
		limited := reference.NewParser(",", reference.IntegerIdentifiers, 3)
		_, err := limited.Parse("1,2,3")
		require.NoError(t, err)
		_, err = limited.Parse("1,2,3,4")
		require.Equal(t, util.ErrorKindMalformedInput, util.ErrorKindOf(err))
	})
}

func TestParserParseTokens(t *testing.T) {
	sequence, err := reference.DefaultParser.ParseTokens([]string{" 4", "5 ", "4"})
	require.NoError(t, err)
	require.Equal(t, "4,5,4", sequence.Join(","))

	_, err = reference.DefaultParser.ParseTokens([]string{"4", ""})
	require.Equal(t, util.ErrorKindMalformedInput, util.ErrorKindOf(err))
}

func TestParseIdentifierKind(t *testing.T) {
	kind, err := reference.ParseIdentifierKind("")
	require.NoError(t, err)
	require.Equal(t, reference.IntegerIdentifiers, kind)

	kind, err = reference.ParseIdentifierKind("opaque")
	require.NoError(t, err)
	require.Equal(t, reference.OpaqueIdentifiers, kind)

	_, err = reference.ParseIdentifierKind("hex")
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}
