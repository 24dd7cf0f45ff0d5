package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ClassCSV is a five-student marksheet. Dara has no Science mark.
//
//	Maths mean 61.6; pass rates at 40: Maths 80%, Science 60%.
const ClassCSV = `Roll Number,Name,Section,Maths,Science,English
1,Asha,A,78,81,90
2,Bilal,B,45,35,60
3,Chen,A,95,88,100
4,Dara,B,30,NA,50
5,Eli,A,60,70,40
`

// WriteFile writes content to name inside a fresh temp dir and returns the
// path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteClass writes ClassCSV as class.csv and returns the path.
func WriteClass(t testing.TB) string {
	t.Helper()
	return WriteFile(t, "class.csv", ClassCSV)
}
