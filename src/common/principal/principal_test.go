package principal

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		text  string
		bytes []byte
	}{
		{"2vxsx-fae", []byte{0x04}},
		{"aaaaa-aa", []byte{}},
		{"rrkah-fqaaa-aaaaa-aaaaq-cai", []byte{0, 0, 0, 0, 0, 0, 0, 1, 1, 1}},
		{"ryjl3-tyaaa-aaaaa-aaaba-cai", []byte{0, 0, 0, 0, 0, 0, 0, 2, 1, 1}},
	}
	for _, c := range cases {
		p, err := Parse(c.text)
		require.NoError(t, err, c.text)
		assert.Equal(t, c.text, p.Text())
		assert.Equal(t, c.bytes, p.Bytes())
		assert.Equal(t, p, FromBytes(c.bytes))
	}
}

func TestParseRejects(t *testing.T) {
	for _, text := range []string{
		"",
		"not-a-principal!",
		"rrkah-fqaaa-aaaab-aaaaq-cai", // checksum
		"RRKAH-FQAAA-AAAAA-AAAAQ-CAI", // not canonical
		"rrkahfqaaaaaaaaaaaaqcai",     // missing dashes
		"aaa",
	} {
		_, err := Parse(text)
		assert.True(t, errors.Is(err, ErrInvalidPrincipal), text)
	}
}

func TestAnonymous(t *testing.T) {
	assert.True(t, Anonymous.IsAnonymous())
	assert.False(t, Management.IsAnonymous())
}

func TestUnmarshalJSON(t *testing.T) {
	var v struct {
		Owner Principal `json:"owner"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"owner":"rrkah-fqaaa-aaaaa-aaaaq-cai"}`), &v))
	assert.Equal(t, Principal("rrkah-fqaaa-aaaaa-aaaaq-cai"), v.Owner)

	require.NoError(t, json.Unmarshal([]byte(`{"owner":""}`), &v))
	assert.Equal(t, Principal(""), v.Owner)

	err := json.Unmarshal([]byte(`{"owner":"bogus"}`), &v)
	assert.True(t, errors.Is(err, ErrInvalidPrincipal))
}
