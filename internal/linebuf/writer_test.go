package linebuf

import (
	"bytes"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string

		writes []string // individual write calls
		want   []string // expected log output
	}{
		{
			desc:   "empty strings",
			writes: []string{"", "", ""},
		},
		{
			desc:   "no newline",
			writes: []string{"Collecting", " rsoft", "_cad"},
			want:   []string{"Collecting rsoft_cad"},
		},
		{
			desc: "newline separated",
			writes: []string{
				"Collecting numpy\n",
				"Collecting scipy\n",
				"Installing\n\n",
				"Done",
			},
			want: []string{
				"Collecting numpy\n",
				"Collecting scipy\n",
				"Installing\n",
				"\n",
				"Done",
			},
		},
		{
			desc:   "partial line",
			writes: []string{"Building ", "wheel\nInstalling rsoft", "_cad"},
			want: []string{
				"Building wheel\n",
				"Installing rsoft_cad",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			var got []string
			w := New(func(line []byte) {
				got = append(got, string(line))
			})

			for _, input := range tt.writes {
				n, err := w.Write([]byte(input))
				assert.NoError(t, err)
				assert.Equal(t, len(input), n)
			}

			w.Flush()

			assert.Equal(t, tt.want, got)
		})
	}
}

// Subprocesses write to stdout from their own goroutine.
// Run with -race.
func TestWriter_concurrent(t *testing.T) {
	t.Parallel()

	const N = 100 // concurrent writers

	var lines int
	w := New(func([]byte) { lines++ })

	var wg sync.WaitGroup
	wg.Add(N)
	for i := 0; i < N; i++ {
		go func() {
			defer wg.Done()

			for _, line := range []string{"one\n", "two\n", "three\n"} {
				_, err := io.WriteString(w, line)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	w.Flush()

	assert.Equal(t, 3*N, lines)
}

func TestLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc   string
		prefix string
		writes []string
		want   string
	}{
		{
			desc:   "no prefix",
			writes: []string{"collecting rsoft_cad\n", "done"},
			want:   "collecting rsoft_cad\ndone\n",
		},
		{
			desc:   "prefix",
			prefix: "pip",
			writes: []string{"Successfully ", "installed\n"},
			want:   "pip: Successfully installed\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			var buff bytes.Buffer
			w := Logger(log.New(&buff, "", 0), tt.prefix)
			for _, input := range tt.writes {
				_, err := io.WriteString(w, input)
				require.NoError(t, err)
			}
			w.Flush()

			assert.Equal(t, tt.want, buff.String())
		})
	}
}
