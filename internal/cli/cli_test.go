package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonvector/masonvector/internal/model"
	"github.com/masonvector/masonvector/internal/store"
)

// execute runs the root command with a private HOME. Flag values persist
// between runs of the shared command tree, so tests pass every flag they
// depend on explicitly.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "masonvector "+version+"\n", out)
}

func TestSimilarity(t *testing.T) {
	out, err := execute(t, "similarity", "John Smith", "Jon Smyth")
	require.NoError(t, err)
	assert.Equal(t, "0.8000\n", out)

	out, err = execute(t, "similarity", "JOHN  smith", "john-smith")
	require.NoError(t, err)
	assert.Equal(t, "1.0000\n", out)
}

func TestMatch(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "corpus.csv",
		"id,full_name,email,claim_id\n"+
			"1,John Smith,j.smith@example.com,C-100\n"+
			"2,Jane Doe,,C-200\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "fuzzy name",
			args: []string{"--name", "Jon Smith", "--email=", "--claim-id="},
			want: "name\t1\tJohn Smith\t0.9000\n",
		},
		{
			name: "email beats name",
			args: []string{"--name", "Zed", "--email", "J.SMITH@example.com", "--claim-id="},
			want: "email\t1\tJohn Smith\t1.0000\n",
		},
		{
			name: "claim id",
			args: []string{"--name=", "--email=", "--claim-id", "c-200"},
			want: "claimId\t2\tJane Doe\t1.0000\n",
		},
		{
			name: "no duplicate",
			args: []string{"--name", "Zed Quux", "--email=", "--claim-id="},
			want: "no duplicate\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"match", "--corpus", corpusPath, "--db=", "--all=false", "--threshold=0.8"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSimilarity_VerboseFromEnv(t *testing.T) {
	t.Setenv("MASONVECTOR_OUTPUT_VERBOSE", "true")

	out, err := execute(t, "similarity", "John Smith", "Jon Smith")
	require.NoError(t, err)
	assert.Contains(t, out, `normalized: "john smith" "jon smith"`)
	assert.Contains(t, out, "distance:   1")
	assert.Contains(t, out, "0.9000")
}

func TestMatch_ZeroThresholdRejected(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "corpus.csv", "id,name\n1,Anyone\n")

	_, err := execute(t, "match", "--corpus", corpusPath, "--db=", "--name", "Zed", "--threshold", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestMatch_NothingToMatch(t *testing.T) {
	_, err := execute(t, "match", "--name=", "--email=", "--claim-id=", "--external-id=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to match")
}

func TestDedupe_CommitNeedsDatabase(t *testing.T) {
	dir := t.TempDir()
	incoming := writeFile(t, dir, "in.csv", "name,dob,state\nA,1,CA\n")

	_, err := execute(t, "dedupe", incoming, "--db=", "--existing=", "--self=false", "--commit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--commit needs a corpus database")
}

func TestDedupe_CommitThenRerun(t *testing.T) {
	dir := t.TempDir()
	incoming := writeFile(t, dir, "in.csv",
		"name,dob,state\n"+
			"Jane Doe,1980-01-01,CA\n"+
			"jane doe,1980-01-01,ca\n"+
			"Bob Stone,1970-01-01,TX\n")
	dbPath := filepath.Join(dir, "claims.db")
	reportPath := filepath.Join(dir, "report.json")

	args := []string{"dedupe", incoming, "--db", dbPath, "--existing=", "--self=false", "--commit", "--json", reportPath}

	_, err := execute(t, args...)
	require.NoError(t, err)

	report := readReport(t, reportPath)
	assert.Equal(t, model.Counts{Incoming: 3, Existing: 0, Duplicates: 1, Fresh: 2}, report.Counts)
	assert.Equal(t, 2, report.Committed)
	assert.Equal(t, 2, countStored(t, dbPath))

	// Everything is now in the corpus
	_, err = execute(t, args...)
	require.NoError(t, err)

	report = readReport(t, reportPath)
	assert.Equal(t, model.Counts{Incoming: 3, Existing: 2, Duplicates: 3, Fresh: 0}, report.Counts)
	assert.Zero(t, report.Committed)
	assert.Equal(t, 2, countStored(t, dbPath))
}

func TestDedupe_SelfCommitRejected(t *testing.T) {
	dir := t.TempDir()
	incoming := writeFile(t, dir, "in.csv", "name,dob,state\nJane Doe,1980-01-01,CA\n")
	dbPath := filepath.Join(dir, "claims.db")

	_, err := execute(t, "dedupe", incoming, "--db", dbPath, "--existing=", "--self=false", "--commit", "--json=")
	require.NoError(t, err)
	assert.Equal(t, 1, countStored(t, dbPath))

	// Self mode skips the corpus, so committing would store Jane Doe twice
	_, err = execute(t, "dedupe", incoming, "--db", dbPath, "--existing=", "--self=true", "--commit", "--json=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--self")
	assert.Equal(t, 1, countStored(t, dbPath))

	_, err = execute(t, "dedupe", incoming, "--db", dbPath, "--existing=", "--self=true", "--commit=false", "--json=")
	require.NoError(t, err)
	assert.Equal(t, 1, countStored(t, dbPath))
}

func TestDedupe_FlaggedRowsAreNotCommitted(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "corpus.json", `[{"id": "js", "full_name": "John Smith", "dob": "1960-01-01", "state": "NY"}]`)
	incoming := writeFile(t, dir, "in.csv",
		"name,dob,state\n"+
			"Jon Smith,1960-01-02,NY\n"+
			"Unrelated Person,1999-09-09,WA\n")
	dbPath := filepath.Join(dir, "claims.db")
	reportPath := filepath.Join(dir, "report.json")

	_, err := execute(t, "dedupe", incoming, "--existing", existing, "--db", dbPath,
		"--self=false", "--commit", "--json", reportPath)
	require.NoError(t, err)

	report := readReport(t, reportPath)
	assert.Equal(t, 1, report.Counts.Flagged)
	require.Len(t, report.Reviews, 1)
	assert.Equal(t, "js", report.Reviews[0].Candidates[0].Entity.ID)
	assert.Equal(t, 1, report.Committed)
}

func TestConfigShow_EnvOverride(t *testing.T) {
	t.Setenv("MASONVECTOR_MATCH_BEST_THRESHOLD", "0.9")

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "best_threshold: 0.9")
	assert.Contains(t, out, "potential_threshold: 0.85")
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"config", "init"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Created default configuration")

	data, err := os.ReadFile(filepath.Join(home, ".masonvector", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "best_threshold: 0.8")

	rootCmd.SetArgs([]string{"config", "init"})
	err = rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func readReport(t *testing.T, path string) model.Report {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report model.Report
	require.NoError(t, json.Unmarshal(data, &report))
	return report
}

func countStored(t *testing.T, path string) int {
	t.Helper()
	st, err := store.Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	return n
}
