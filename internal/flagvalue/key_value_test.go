package flagvalue

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		give []string
		want []KeyValue
	}{
		{desc: "none"},
		{
			desc: "single",
			give: []string{"-D", "project=rsoft-cad"},
			want: []KeyValue{{Key: "project", Value: "rsoft-cad"}},
		},
		{
			desc: "empty value",
			give: []string{"-D=release="},
			want: []KeyValue{{Key: "release"}},
		},
		{
			desc: "value with equals",
			give: []string{"-D", "copyright=a=b"},
			want: []KeyValue{{Key: "copyright", Value: "a=b"}},
		},
		{
			desc: "multiple",
			give: []string{"-D", "project=x", "-D", "release=0.1"},
			want: []KeyValue{
				{Key: "project", Value: "x"},
				{Key: "release", Value: "0.1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			fset := flag.NewFlagSet(t.Name(), flag.ContinueOnError)
			var got []KeyValue
			fset.Var(ListOf(&got), "D", "")
			require.NoError(t, fset.Parse(tt.give))

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyValue_error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		give string
	}{
		{desc: "no equals", give: "project"},
		{desc: "empty key", give: " =foo"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			fset := flag.NewFlagSet(t.Name(), flag.ContinueOnError)
			fset.SetOutput(io.Discard)
			var got []KeyValue
			fset.Var(ListOf(&got), "D", "")
			assert.Error(t, fset.Parse([]string{"-D", tt.give}))
		})
	}
}

func TestKeyValue_String(t *testing.T) {
	t.Parallel()

	kv := KeyValue{Key: "project", Value: "rsoft-cad"}
	assert.Equal(t, "project=rsoft-cad", kv.String())
	assert.Equal(t, kv, kv.Get())
}
