package parse

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizer(t *testing.T) {
	s := Sanitizer{MaxBytes: 16}

	t.Run("clean input is returned unchanged", func(t *testing.T) {
		out, err := s.Sanitize("T", "hello\nworld")
		require.NoError(t, err)
		assert.Equal(t, "hello\nworld", out)
	})

	t.Run("control characters are stripped", func(t *testing.T) {
		out, err := s.Sanitize("T", "a\x00b\x1bc\td")
		require.NoError(t, err)
		assert.Equal(t, "abc\td", out)
	})

	t.Run("oversized input is rejected", func(t *testing.T) {
		_, err := s.Sanitize("T", strings.Repeat("x", 17))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInputTooLarge)
		assert.Equal(t, domain.KindParse, domain.KindOf(err))
	})

	t.Run("invalid utf-8 is rejected", func(t *testing.T) {
		_, err := s.Sanitize("T", "ab\xff")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidUTF8)
		var pe *domain.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "invalid byte at offset 2", pe.Received)
	})

	t.Run("zero limit uses the default", func(t *testing.T) {
		_, err := Sanitizer{}.Sanitize("T", strings.Repeat("x", DefaultMaxResponseBytes))
		assert.NoError(t, err)
		_, err = Sanitizer{}.Sanitize("T", strings.Repeat("x", DefaultMaxResponseBytes+1))
		assert.Error(t, err)
	})
}

func TestEmptyResponsesAreRetryable(t *testing.T) {
	for _, r := range []domain.Response{{}, domain.StructuredResponse(nil)} {
		_, err := Int[int]("int", r)
		assert.ErrorIs(t, err, domain.ErrEmptyResponse)
		assert.Equal(t, domain.KindParse, domain.KindOf(err))
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name    string
		resp    domain.Response
		want    int8
		wantErr bool
	}{
		{"text", domain.TextResponse(" 57 "), 57, false},
		{"negative text", domain.TextResponse("-3"), -3, false},
		{"structured float", domain.StructuredResponse(float64(12)), 12, false},
		{"structured string", domain.StructuredResponse("7"), 7, false},
		{"fraction", domain.StructuredResponse(1.5), 0, true},
		{"overflow", domain.TextResponse("200"), 0, true},
		{"garbage", domain.TextResponse("abc"), 0, true},
		{"bool", domain.StructuredResponse(true), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Int[int8]("int8", tt.resp)
			if tt.wantErr {
				require.Error(t, err)
				var pe *domain.ParseError
				assert.True(t, errors.As(err, &pe))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBool(t *testing.T) {
	for _, in := range []string{"yes", "Y", "true", "1"} {
		v, err := Bool("bool", domain.TextResponse(in))
		require.NoError(t, err, in)
		assert.True(t, v, in)
	}
	for _, in := range []string{"no", "N", "FALSE", "0"} {
		v, err := Bool("bool", domain.TextResponse(in))
		require.NoError(t, err, in)
		assert.False(t, v, in)
	}
	v, err := Bool("bool", domain.StructuredResponse(true))
	require.NoError(t, err)
	assert.True(t, v)

	_, err = Bool("bool", domain.TextResponse("maybe"))
	assert.Equal(t, domain.KindParse, domain.KindOf(err))
}

func TestFloatDurationTime(t *testing.T) {
	f, err := Float("float64", domain.TextResponse("2.5"))
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f, 1e-9)

	d, err := Duration("Duration", domain.TextResponse("1m30s"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = Duration("Duration", domain.TextResponse("soon"))
	assert.Equal(t, domain.KindParse, domain.KindOf(err))

	ts, err := Time("Time", domain.TextResponse("2024-05-01T10:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 2024, ts.Year())
}

func TestUUIDAndRune(t *testing.T) {
	id, err := UUID("UUID", domain.TextResponse("6ba7b810-9dad-41d1-80b4-00c04fd430c8"))
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-41d1-80b4-00c04fd430c8", id.String())

	_, err = UUID("UUID", domain.TextResponse("nope"))
	assert.Error(t, err)

	r, err := Rune("rune", domain.TextResponse("é"))
	require.NoError(t, err)
	assert.Equal(t, 'é', r)

	_, err = Rune("rune", domain.TextResponse("ab"))
	assert.Error(t, err)
}

func TestObject(t *testing.T) {
	m, err := Object("Cfg", domain.TextResponse(`{"host":"db","port":5432}`))
	require.NoError(t, err)
	assert.Equal(t, "db", m["host"])

	m, err = Object("Cfg", domain.StructuredResponse(map[string]any{"host": "db"}))
	require.NoError(t, err)
	assert.Equal(t, "db", m["host"])

	_, err = Object("Cfg", domain.TextResponse(`[1,2]`))
	assert.Equal(t, domain.KindParse, domain.KindOf(err))
}

func TestInto(t *testing.T) {
	type config struct {
		Host    string        `json:"host"`
		Port    uint16        `json:"port"`
		Timeout time.Duration `json:"timeout"`
	}

	var c config
	err := Into("config", domain.TextResponse(`{"host":"db","port":5432,"timeout":"5s"}`), &c)
	require.NoError(t, err)
	assert.Equal(t, config{Host: "db", Port: 5432, Timeout: 5 * time.Second}, c)

	err = Into("config", domain.StructuredResponse(map[string]any{"host": "db", "extra": 1}), &c)
	require.Error(t, err)
	assert.Equal(t, domain.KindParse, domain.KindOf(err))
}
