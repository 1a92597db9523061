package browser

import "testing"

func TestFindChromeBinaryPrefersOverride(t *testing.T) {
	t.Setenv("CHROME_BIN", "/from/env")
	if got := FindChromeBinary("/explicit/chrome"); got != "/explicit/chrome" {
		t.Errorf("FindChromeBinary: got %q, want /explicit/chrome", got)
	}
}

func TestFindChromeBinaryUsesEnv(t *testing.T) {
	t.Setenv("CHROME_BIN", "/from/env")
	if got := FindChromeBinary(""); got != "/from/env" {
		t.Errorf("FindChromeBinary: got %q, want /from/env", got)
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.Width <= 0 || o.Height <= 0 || o.Timeout <= 0 {
		t.Errorf("DefaultOptions: got %+v", o)
	}
}
