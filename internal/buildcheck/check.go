// Package buildcheck inspects the frontend build output before the server
// starts and reports assets that index.html references but the build does
// not contain.
package buildcheck

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/f4ah6o/buildserve-go/internal/static"
)

// Report is the outcome of Check.
type Report struct {
	Root       string
	RootExists bool
	IndexFound bool
	// Referenced counts distinct local asset paths found in index.html.
	Referenced int
	// Missing lists referenced asset paths that do not resolve.
	Missing []string
}

// OK reports whether the build looks servable.
func (r Report) OK() bool {
	return r.RootExists && r.IndexFound && len(r.Missing) == 0
}

// assetRels are the <link> relations that load a file from the build.
// Others (canonical, alternate, prefetch) often name client-side routes.
var assetRels = map[string]bool{
	"stylesheet":       true,
	"icon":             true,
	"apple-touch-icon": true,
	"manifest":         true,
	"preload":          true,
	"modulepreload":    true,
}

// assetAttrs maps selectors to the attribute holding the asset URL.
var assetAttrs = []struct {
	selector string
	attr     string
}{
	{"script[src]", "src"},
	{"link[href][rel]", "href"},
	{"img[src]", "src"},
	{"source[src]", "src"},
	{"video[src]", "src"},
	{"audio[src]", "src"},
}

// Check resolves the assets referenced by the root index.html of dir.
// A missing root or index is reported, not returned as an error.
func Check(dir *static.Dir) (Report, error) {
	report := Report{Root: dir.Root()}

	info, err := os.Stat(dir.Root())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, nil
		}
		return report, fmt.Errorf("stat %s: %w", dir.Root(), err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%s is not a directory", dir.Root())
	}
	report.RootExists = true

	f, _, err := dir.Open("/")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, nil
		}
		return report, err
	}
	defer f.Close()
	report.IndexFound = true

	root, err := html.Parse(f)
	if err != nil {
		return report, fmt.Errorf("parse %s: %w", static.IndexFile, err)
	}

	refs := References(goquery.NewDocumentFromNode(root))
	report.Referenced = len(refs)

	for _, ref := range refs {
		af, _, err := dir.Open(ref)
		if err != nil {
			report.Missing = append(report.Missing, ref)
			continue
		}
		af.Close()
	}
	return report, nil
}

// References returns the sorted, distinct local asset paths referenced by
// doc. External, data and fragment-only references are skipped.
func References(doc *goquery.Document) []string {
	seen := map[string]bool{}
	for _, a := range assetAttrs {
		doc.Find(a.selector).Each(func(_ int, s *goquery.Selection) {
			if goquery.NodeName(s) == "link" && !loadsAsset(s.AttrOr("rel", "")) {
				return
			}
			v, _ := s.Attr(a.attr)
			if p, ok := localPath(v); ok {
				seen[p] = true
			}
		})
	}

	refs := make([]string, 0, len(seen))
	for p := range seen {
		refs = append(refs, p)
	}
	sort.Strings(refs)
	return refs
}

// loadsAsset reports whether a space-separated rel value names a
// relation in assetRels.
func loadsAsset(rel string) bool {
	for _, r := range strings.Fields(strings.ToLower(rel)) {
		if assetRels[r] {
			return true
		}
	}
	return false
}

// localPath turns an attribute value into an absolute path under the
// server root, or reports false when it points elsewhere.
func localPath(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}

	return path.Clean("/" + u.Path), true
}
