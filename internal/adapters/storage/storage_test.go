package storage

import (
	"strings"
	"testing"
)

func TestPolicyValidateContentType(t *testing.T) {
	p := NewPolicy(1024)

	if err := p.ValidateContentType("application/pdf"); err != nil {
		t.Fatalf("expected pdf to be allowed, got %v", err)
	}
	if err := p.ValidateContentType("Image/JPEG; charset=binary"); err != nil {
		t.Fatalf("expected parameters and case to be ignored, got %v", err)
	}
	if err := p.ValidateContentType("application/x-msdownload"); err == nil {
		t.Fatal("expected executable content type to be rejected")
	}
}

func TestPolicyValidateFileSize(t *testing.T) {
	p := NewPolicy(1024)

	if err := p.ValidateFileSize(0); err == nil {
		t.Fatal("expected empty file to be rejected")
	}
	if err := p.ValidateFileSize(1024); err != nil {
		t.Fatalf("expected file at the limit to pass, got %v", err)
	}
	if err := p.ValidateFileSize(1025); err == nil {
		t.Fatal("expected file over the limit to be rejected")
	}
}

func TestAttachmentDispositionStripsQuotes(t *testing.T) {
	got := AttachmentDisposition("site \"plan\".pdf")
	if got != `attachment; filename="site plan.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if strings.ContainsAny(AttachmentDisposition("a\r\nb.pdf"), "\r\n") {
		t.Fatal("expected line breaks to be removed")
	}
}

func TestS3EndpointAddsScheme(t *testing.T) {
	cases := map[string]struct {
		endpoint string
		ssl      bool
		want     string
	}{
		"empty":     {"", true, ""},
		"tls":       {"s3.local:9000", true, "https://s3.local:9000"},
		"plain":     {"s3.local:9000", false, "http://s3.local:9000"},
		"qualified": {"https://s3.example.com", false, "https://s3.example.com"},
	}
	for name, tc := range cases {
		if got := s3Endpoint(tc.endpoint, tc.ssl); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", name, tc.want, got)
		}
	}
}
