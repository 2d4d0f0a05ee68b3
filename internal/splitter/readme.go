package splitter

import (
	"fmt"
	"strings"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

const extraReadmeAppendFmt = `

***
Document path: %s
Document contents:
%s
***

`

// ExpandRootReadme finds the repository's root readme.md and inlines every
// other markdown file the readme references by path. The merged text seeds
// the repository-level summary.
//
// Exactly one root readme is required: none yields ErrMissingRootReadme,
// more than one yields ErrMultipleRootReadmes.
func ExpandRootReadme(documents []models.Document) (string, error) {
	var rootReadme string
	var found bool
	var extraMDFiles []models.Document

	for _, doc := range documents {
		switch {
		case strings.ToLower(doc.FilePath) == "readme.md":
			if found {
				return "", core.ErrMultipleRootReadmes
			}
			rootReadme = doc.Content
			found = true
		case strings.HasSuffix(strings.ToLower(doc.FileName), ".md"):
			extraMDFiles = append(extraMDFiles, doc)
		}
	}

	if !found {
		return "", core.ErrMissingRootReadme
	}
	return mergeReadmes(rootReadme, extraMDFiles), nil
}

// mergeReadmes appends the contents of every markdown file whose path
// appears somewhere in the main readme, in the order the files were
// crawled.
func mergeReadmes(mainReadme string, otherMDFiles []models.Document) string {
	if len(otherMDFiles) == 0 {
		return mainReadme
	}

	lines := strings.Split(mainReadme, "\n")
	merged := mainReadme
	for _, md := range otherMDFiles {
		for _, line := range lines {
			if strings.Contains(line, md.FilePath) {
				merged += fmt.Sprintf(extraReadmeAppendFmt, md.FilePath, md.Content)
				break
			}
		}
	}
	return merged
}
