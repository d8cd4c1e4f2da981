package program

import (
	"os"
	"path/filepath"
	"testing"

	_ "treenav/internal/backend/json"
)

func TestParseSplitsStatementsOnSemicolon(t *testing.T) {
	prog, err := Parse(`'{"a":1}'^json/a ; '{"b":2}'^json/b`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	if prog.Statements[0].Assign != nil || prog.Statements[1].Assign != nil {
		t.Fatalf("expected plain path statements, got assignments")
	}
}

func TestParseIgnoresSemicolonInsideQuotedStarter(t *testing.T) {
	prog, err := Parse(`'a;b'^split[";"]`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
}

func TestParseRecognizesAssignment(t *testing.T) {
	prog, err := Parse(`'{"a":1}'^json/a = 2`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	stmt := prog.Statements[0]
	if stmt.Assign == nil {
		t.Fatal("expected an assignment statement")
	}
	f, _, _ := stmt.Assign.AsValue().AsInt()
	if f != 2 {
		t.Fatalf("expected assigned value 2, got %v", stmt.Assign)
	}
}

func TestParseDoesNotTreatEqualityFilterAsAssignment(t *testing.T) {
	prog, err := Parse(`'{"items":[{"name":"x"}]}'^json/items/*[/name=="x"]`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if prog.Statements[0].Assign != nil {
		t.Fatalf("expected a plain path statement, got an assignment")
	}
}

func TestRunPrintsMatchedPath(t *testing.T) {
	prog, err := Parse(`'{"a":1}'^json/a`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := prog.Run(Params{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunAssignsAndSavesBackIntoOrigin(t *testing.T) {
	prog, err := Parse(`'{"a":1}'^json/a = 2`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := prog.Run(Params{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunReportsNoFatalErrorOnUnmatchedPath(t *testing.T) {
	prog, err := Parse(`'{"a":1}'^json/missing`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := prog.Run(Params{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

// TestRunAssignsThroughFsWriteReElevationAndSavesToDisk exercises the
// full fs->fs->json chain from spec scenario 6: a bare filesystem path
// starter (no quotes) elevates straight to "fs", then "^fs[w]" re-elevates
// the same fs cell to grant write access, then "^json" parses the file's
// bytes and the assignment writes the new value all the way back through
// json's NoAutoWrite domain into the fs cell's Write(), landing on disk.
func TestRunAssignsThroughFsWriteReElevationAndSavesToDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assignment.json")
	if err := os.WriteFile(path, []byte(`{"a":1}`), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	prog, err := Parse(path + `^fs[w]^json/a = 2`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := prog.Run(Params{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Fatalf("expected file to be rewritten with a=2, got %q", got)
	}
}

// TestRunFsElevationWithoutWriteParamRejectsAssignment confirms the
// "[w]" gate actually gates: omitting it should leave the fs cell
// read-only, so the assignment fails and the on-disk file is untouched.
func TestRunFsElevationWithoutWriteParamRejectsAssignment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readonly.json")
	if err := os.WriteFile(path, []byte(`{"a":1}`), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	prog, err := Parse(path + `^fs^json/a = 2`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := prog.Run(Params{}); err == nil {
		t.Fatal("expected Run to fail writing back to a non-writable fs cell")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("expected file to remain unchanged without [w], got %q", got)
	}
}
