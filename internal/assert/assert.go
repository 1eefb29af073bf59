package assert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Assert is a wrapper around assert.Assertions and testing.T
type Assert struct {
	*assert.Assertions
	T *testing.T
}

// New creates a new Assert object
func New(t *testing.T) *Assert {
	return &Assert{
		Assertions: assert.New(t),
		T:          t,
	}
}

// EqualToFixture compares result with the golden file
// fixtures/<a.T.Name()>_<fixtureName>.txt.
// If GEN_FIXTURE=true is set, it writes result to the fixture file and passes.
func (a *Assert) EqualToFixture(fixtureName string, result string) {
	a.T.Helper()
	fixturePath := filepath.Join("fixtures", a.T.Name()+"_"+fixtureName+".txt")

	if os.Getenv("GEN_FIXTURE") == "true" {
		a.NoError(os.MkdirAll(filepath.Dir(fixturePath), 0755), "Failed to create fixture directory")
		a.NoError(os.WriteFile(fixturePath, []byte(result), 0644), "Failed to write fixture file")
		return
	}

	expected, err := os.ReadFile(fixturePath)
	a.NoError(err, "Failed to read fixture file")
	a.Equal(string(expected), result, "Result does not match fixture")
}

// Tree lays out files under dir. Keys ending in "/" are created as empty
// directories; other keys are files with the given content.
func (a *Assert) Tree(dir string, files map[string]string) {
	a.T.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if rel[len(rel)-1] == '/' {
			a.NoError(os.MkdirAll(path, 0755))
			continue
		}
		a.NoError(os.MkdirAll(filepath.Dir(path), 0755))
		a.NoError(os.WriteFile(path, []byte(content), 0644))
	}
}
