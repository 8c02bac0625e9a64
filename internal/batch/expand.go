package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pdferrors "github.com/a3tai/pdf-retitle/internal/pdf/errors"
)

// Expansion is the result of resolving command-line inputs into files
type Expansion struct {
	Files    []string
	Problems []Failure
}

// ExpandInputs resolves every input into PDF file paths.
//
// A regular file is used as is. A directory contributes its immediate *.pdf
// entries. A path containing * or ? is matched against its parent
// directory, or the current directory when the parent does not exist. Anything
// else becomes a problem entry and is skipped.
func ExpandInputs(inputs []string) Expansion {
	var exp Expansion

	for _, input := range inputs {
		info, err := os.Stat(input)
		switch {
		case err == nil && info.Mode().IsRegular():
			exp.Files = append(exp.Files, input)

		case err == nil && info.IsDir():
			matches, _ := filepath.Glob(filepath.Join(input, "*.pdf"))
			sort.Strings(matches)
			exp.Files = append(exp.Files, matches...)

		case hasGlobMeta(input):
			matches, err := globFromParent(input)
			if err != nil {
				exp.problem(input, pdferrors.WrapError(pdferrors.ErrorTypeMalformedInput, "invalid pattern", err))
				continue
			}
			if len(matches) == 0 {
				exp.problem(input, pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedInput,
					fmt.Sprintf("no matches found for: %s", input)))
				continue
			}
			exp.Files = append(exp.Files, matches...)

		default:
			exp.problem(input, pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedInput,
				fmt.Sprintf("%s not found (skipping)", input)))
		}
	}

	return exp
}

func (e *Expansion) problem(path string, err *pdferrors.PDFError) {
	e.Problems = append(e.Problems, Failure{Path: path, Message: err.WithFile(path).Error()})
}

// hasGlobMeta reports whether path is meant as a pattern. A bracket alone does
// not make one, so "[draft].pdf" that does not exist is reported missing.
func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?")
}

func globFromParent(pattern string) ([]string, error) {
	parent := filepath.Dir(pattern)
	if _, err := os.Stat(parent); err != nil {
		parent = "."
	}

	matches, err := filepath.Glob(filepath.Join(parent, filepath.Base(pattern)))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// DefaultOutputDir returns the output directory used when none is configured
func DefaultOutputDir(files []string, name string) string {
	if len(files) == 0 {
		return name
	}
	return filepath.Join(filepath.Dir(files[0]), name)
}

// isPathWithinDirectory reports whether path resolves inside directory
func isPathWithinDirectory(path, directory string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absDir, err := filepath.Abs(directory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve directory: %w", err)
	}

	rel, err := filepath.Rel(filepath.Clean(absDir), filepath.Clean(absPath))
	if err != nil {
		return false, nil
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != ".", nil
}
