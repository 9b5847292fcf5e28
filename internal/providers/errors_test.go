package providers

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRateLimitErrorString(t *testing.T) {
	err := &RateLimitError{
		Provider:   "p",
		StatusCode: 429,
		Message:    "rate limited",
	}
	if got := err.Error(); got == "" || got == "rate limited" {
		t.Fatalf("expected status in error string, got %q", got)
	}

	rl, ok := AsRateLimitError(err)
	if !ok || rl == nil {
		t.Fatalf("expected to unwrap rate limit error")
	}

	noStatus := &RateLimitError{}
	if got := noStatus.Error(); got == "" {
		t.Fatalf("expected fallback message")
	}
}

func TestKindForStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{400, KindBadRequest},
		{401, KindForbidden},
		{403, KindForbidden},
		{404, KindNotFound},
		{429, KindRateLimited},
		{500, KindServer},
		{503, KindServer},
		{418, KindOther},
		{302, KindOther},
	}
	for _, tc := range cases {
		if got := KindForStatus(tc.status); got != tc.kind {
			t.Fatalf("status %d: expected %s, got %s", tc.status, tc.kind, got)
		}
	}
}

func TestUpstreamErrorUnwrapsAndFormats(t *testing.T) {
	inner := &RateLimitError{StatusCode: 429}
	err := fmt.Errorf("wrapped: %w", &UpstreamError{
		Kind:       KindRateLimited,
		StatusCode: 429,
		Endpoint:   "/competitions/2021/standings",
		Err:        inner,
	})

	upErr, ok := AsUpstreamError(err)
	if !ok || upErr.Kind != KindRateLimited {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, ok := AsRateLimitError(err); !ok {
		t.Fatal("expected rate limit error reachable through chain")
	}
	if !IsRateLimited(err) {
		t.Fatal("expected IsRateLimited")
	}
	if !strings.Contains(err.Error(), "/competitions/2021/standings") {
		t.Fatalf("expected endpoint in message, got %q", err.Error())
	}

	network := &UpstreamError{Kind: KindNetwork, Endpoint: "/matches", Err: errors.New("dial tcp: refused")}
	if IsRateLimited(network) {
		t.Fatal("expected network error not to be rate limited")
	}
	if !strings.Contains(network.Error(), "dial tcp") {
		t.Fatalf("expected cause in message, got %q", network.Error())
	}
}

func TestPaths(t *testing.T) {
	cases := map[string]string{
		CompetitionPath(2021, ""):          "/competitions/2021",
		CompetitionPath(2021, "standings"): "/competitions/2021/standings",
		MatchPath(7, ""):                   "/matches/7",
		MatchPath(7, "head2head"):          "/matches/7/head2head",
		TeamPath(57, "matches"):            "/teams/57/matches",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}
