package linkextract

import (
	"reflect"
	"testing"

	"falcon-crawler/internal/urlutil"
)

func TestExtractOrderAndDuplicates(t *testing.T) {
	html := `<html><body>
		<a href="/a">A</a>
		<link href="/b" rel="stylesheet">
		<a href="/a">A again</a>
		<a href="javascript:void(0)">noop</a>
		<a href="mailto:x@y.com">mail</a>
		<a href="">empty</a>
		<a href="https://other.test/c">C</a>
	</body></html>`

	base, ok := urlutil.Parse("https://ex.test/dir/page.html")
	if !ok {
		t.Fatal("failed to parse base")
	}

	ex := New(nil)
	got := ex.Extract([]byte(html), base)

	want := []string{
		"https://ex.test/a",
		"https://ex.test/b",
		"https://ex.test/a",
		"https://other.test/c",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %v, want %v", got, want)
	}
}

func TestExtractNoHrefElements(t *testing.T) {
	base, _ := urlutil.Parse("https://ex.test/")
	ex := New(nil)
	got := ex.Extract([]byte("<html><body><p>no links here</p></body></html>"), base)
	if len(got) != 0 {
		t.Fatalf("expected no links, got %v", got)
	}
}

func TestExtractMalformedHTML(t *testing.T) {
	base, _ := urlutil.Parse("https://ex.test/")
	ex := New(nil)
	got := ex.Extract([]byte(`<html><body><a href="/x">unclosed`), base)
	if len(got) != 1 || got[0] != "https://ex.test/x" {
		t.Fatalf("expected single recovered link, got %v", got)
	}
}
