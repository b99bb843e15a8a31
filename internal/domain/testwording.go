package domain

import "strings"

const (
	// Header and trailer are already in cleaned form: pauses read ", ".
	testHeader  = "TEST, TEST, TEST, THIS IS ONLY A TEST.\n\n"
	testTrailer = "\nREPEAT, THIS WAS A TEST, THIS WAS ONLY A TEST. THERE IS NO TSUNAMI DANGER AT THIS TIME."
)

// AddTestWording marks a statement as a test: a test header, "TEST TSUNAMI"
// in place of "TSUNAMI" and a test trailer. Text already carrying the header
// is returned unchanged.
func AddTestWording(text string) string {
	if HasTestWording(text) {
		return text
	}
	body := strings.ReplaceAll(text, "TSUNAMI", "TEST TSUNAMI")
	return testHeader + body + testTrailer
}

// RemoveTestWording reverses AddTestWording.
func RemoveTestWording(text string) string {
	if !HasTestWording(text) {
		return text
	}
	body := strings.TrimPrefix(text, testHeader)
	body = strings.TrimSuffix(body, testTrailer)
	return strings.ReplaceAll(body, "TEST TSUNAMI", "TSUNAMI")
}

// HasTestWording reports whether text starts with the test header.
func HasTestWording(text string) bool {
	return strings.HasPrefix(text, testHeader)
}
