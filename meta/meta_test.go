package meta

import "testing"

func TestExtract_FullDocument(t *testing.T) {
	html := `<!DOCTYPE html>
<html lang="en">
<head>
	<title>Example Page</title>
	<meta name="description" content="A page about examples.">
	<meta property="og:site_name" content="Example Inc">
	<meta property="og:image" content="https://example.com/banner.png">
</head>
<body><p>hello</p></body>
</html>`

	md := Extract(html, "https://example.com/page")

	if md.Title != "Example Page" {
		t.Errorf("title = %q, want %q", md.Title, "Example Page")
	}
	if md.Description != "A page about examples." {
		t.Errorf("description = %q", md.Description)
	}
	if md.SiteName != "Example Inc" {
		t.Errorf("site name = %q", md.SiteName)
	}
	if md.OGImage != "https://example.com/banner.png" {
		t.Errorf("og image = %q", md.OGImage)
	}
	if md.Language != "en" {
		t.Errorf("language = %q, want %q", md.Language, "en")
	}
	if md.SourceURL != "https://example.com/page" {
		t.Errorf("source URL = %q", md.SourceURL)
	}
}

func TestExtract_OGTitleFallback(t *testing.T) {
	html := `<html><head><meta property="og:title" content="OG Title"></head><body></body></html>`

	md := Extract(html, "https://example.com")
	if md.Title != "OG Title" {
		t.Errorf("title = %q, want og:title fallback", md.Title)
	}
}

func TestExtract_TitleTagWinsOverOG(t *testing.T) {
	html := `<html><head>
		<title>Real Title</title>
		<meta property="og:title" content="OG Title">
	</head><body></body></html>`

	md := Extract(html, "https://example.com")
	if md.Title != "Real Title" {
		t.Errorf("title = %q, want the title tag", md.Title)
	}
}

func TestExtract_EmptyHTML(t *testing.T) {
	md := Extract("", "https://example.com")
	if md.Title != "" || md.Description != "" {
		t.Errorf("empty document should yield empty metadata, got %+v", md)
	}
	if md.SourceURL != "https://example.com" {
		t.Errorf("source URL = %q should survive empty documents", md.SourceURL)
	}
}
