package llm

import (
	"context"
	"errors"
	"testing"
)

type scriptedClient struct {
	calls int
	errs  []error
	resp  string
}

func (s *scriptedClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	return s.resp, nil
}

func TestWithRetryTransientErrorRecovers(t *testing.T) {
	base := &scriptedClient{errs: []error{errors.New("connection reset by peer")}, resp: "ok"}
	c := WithRetry(base)

	got, err := c.Generate(context.Background(), "prompt", GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "ok" {
		t.Fatalf("resp = %q, want ok", got)
	}
	if base.calls != 2 {
		t.Fatalf("calls = %d, want 2", base.calls)
	}
}

func TestWithRetryPermanentErrorNoRetry(t *testing.T) {
	base := &scriptedClient{errs: []error{errors.New("invalid api key")}}
	c := WithRetry(base)

	if _, err := c.Generate(context.Background(), "prompt", GenerateOptions{}); err == nil {
		t.Fatal("expected error")
	}
	if base.calls != 1 {
		t.Fatalf("calls = %d, want 1", base.calls)
	}
}

func TestShouldRetryClassification(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("status code: 429"), true},
		{errors.New("status code: 503 server_error"), true},
		{errors.New("i/o timeout"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("status code: 400 invalid request"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := shouldRetry(tc.err); got != tc.want {
			t.Errorf("shouldRetry(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
