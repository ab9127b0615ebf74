package main

import (
	"strings"
	"testing"
	"time"

	"github.com/markdingo/propwait/log"
	"github.com/markdingo/propwait/mock"
)

func TestParseOptions(t *testing.T) {
	out := &mock.IOWriter{}
	log.SetOut(out)

	cfg := &config{}
	res := cfg.parseOptions([]string{programName,
		"--propagation-seconds", "300", "--interval", "2s",
		"--bootstrap", "192.0.2.53",
		"_acme-challenge.example.com", "valueone",
		"_acme-challenge.example.org.", "valuetwo"})
	if res != parseContinue {
		t.Fatal("Expected parseContinue, got", res, out.String())
	}
	if cfg.propagationSeconds != 300 {
		t.Error("propagation-seconds not parsed", cfg.propagationSeconds)
	}
	if cfg.interval != 2*time.Second {
		t.Error("interval not parsed", cfg.interval)
	}
	if cfg.bootstrap != "192.0.2.53" {
		t.Error("bootstrap not parsed", cfg.bootstrap)
	}
	if len(cfg.tasks) != 2 {
		t.Fatal("Expected two tasks, got", len(cfg.tasks))
	}
	if cfg.tasks[0].Record != "_acme-challenge.example.com" ||
		cfg.tasks[0].Value != "valueone" {
		t.Error("First task wrong", cfg.tasks[0])
	}
	if cfg.tasks[0].Domain != "example.com" {
		t.Error("Domain not deduced from record name", cfg.tasks[0].Domain)
	}
	if cfg.tasks[1].Domain != "example.org" {
		t.Error("Trailing dot should not upset domain deduction", cfg.tasks[1].Domain)
	}
}

func TestParseOptionsOddArguments(t *testing.T) {
	out := &mock.IOWriter{}
	log.SetOut(out)

	cfg := &config{}
	if res := cfg.parseOptions([]string{programName, "_acme-challenge.example.com"}); res != parseFailed {
		t.Error("An unpaired record should fail to parse, got", res)
	}
	if !strings.Contains(out.String(), "record/value pairs") {
		t.Error("Expected a pairing complaint, got", out.String())
	}

	cfg = &config{}
	if res := cfg.parseOptions([]string{programName}); res != parseFailed {
		t.Error("No arguments should fail to parse, got", res)
	}
}

func TestParseOptionsStops(t *testing.T) {
	out := &mock.IOWriter{}
	log.SetOut(out)

	cfg := &config{}
	if res := cfg.parseOptions([]string{programName, "-v"}); res != parseStop {
		t.Error("Version should stop, got", res)
	}
	if !strings.Contains(out.String(), programName) {
		t.Error("Version output missing program name", out.String())
	}

	out.Reset()
	cfg = &config{}
	if res := cfg.parseOptions([]string{programName, "-h"}); res != parseStop {
		t.Error("Help should stop, got", res)
	}
	if !strings.Contains(out.String(), "SYNOPSIS") {
		t.Error("Help output missing usage", out.String())
	}

	cfg = &config{}
	if res := cfg.parseOptions([]string{programName, "--no-such-flag"}); res != parseFailed {
		t.Error("Unknown flag should fail, got", res)
	}
}

func TestWaitDuration(t *testing.T) {
	if waitDuration(0) != maxWait {
		t.Error("Zero should mean the internal cap", waitDuration(0))
	}
	if waitDuration(300) != 300*time.Second {
		t.Error("Positive seconds should be taken literally", waitDuration(300))
	}
}

func TestDeduceDomain(t *testing.T) {
	testCases := []struct{ in, expect string }{
		{"_acme-challenge.example.com", "example.com"},
		{"_acme-challenge.example.com.", "example.com"},
		{"txt.example.com", "txt.example.com"},
	}
	for ix, tc := range testCases {
		if got := deduceDomain(tc.in); got != tc.expect {
			t.Error(ix, "Got", got, "Exp", tc.expect)
		}
	}
}
