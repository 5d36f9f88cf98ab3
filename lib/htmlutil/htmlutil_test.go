package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
	<ul>
		<li><a href="/courses/123456">  CS101
			<span>Intro    to CS</span></a></li>
		<li><a href="https://example.com/files/report.pdf">report.pdf</a></li>
	</ul>`))
	if err != nil {
		t.Fatal(err)
	}

	base, err := url.Parse("https://www.gradescope.com")
	if err != nil {
		t.Fatal(err)
	}

	anchors := GetAnchors(doc.Find("a"), base)
	require.Equal(t, []Anchor{
		{Name: "CS101 Intro to CS", Href: "https://www.gradescope.com/courses/123456"},
		{Name: "report.pdf", Href: "https://example.com/files/report.pdf"},
	}, anchors)
}

func TestLastPathSegment(t *testing.T) {
	cases := []struct {
		href     string
		expected string
	}{
		{"/courses/123456", "123456"},
		{"/courses/123456/assignments/987/submissions/555", "555"},
		{"https://www.gradescope.com/courses/42/", "42"},
		{"", ""},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, LastPathSegment(test.href))
	}
}
