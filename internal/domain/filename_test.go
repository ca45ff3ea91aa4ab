package domain

import "testing"

func TestNormalizeFilename(t *testing.T) {
	cases := map[string]string{
		"":                      DefaultFilename,
		"   ":                   DefaultFilename,
		"invoice.pdf":           "invoice.pdf",
		"Invoice 2026-08.PDF":   "invoice-2026-08.pdf",
		"Rechnung März":         "rechnung-marz.pdf",
		"reçu/señor..contrato":  "recu-senor..contrato.pdf",
		"___":                   "___.pdf",
		"!!!":                   DefaultFilename,
		"statement_final":       "statement_final.pdf",
		"Facture  Client  #42":  "facture-client-42.pdf",
	}
	for in, want := range cases {
		if got := NormalizeFilename(in); got != want {
			t.Fatalf("NormalizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
