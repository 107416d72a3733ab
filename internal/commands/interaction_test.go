package commands_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteraction_AddList(t *testing.T) {
	for _, backend := range []string{"csv", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := initProject(t, backend)
			id := addBeneficiary(t, dir, "--period", "2024-01")

			out, err := runRosa(t, "interaction", "list", "--repo", dir, id)
			require.NoError(t, err, out)
			assert.Contains(t, out, "No interactions.")

			out, err = runRosa(t, "interaction", "add", "--repo", dir, id,
				"--type", "phone", "--title", "Appel CAF", "--period", "2024-01",
				"--description", "Dossier de prime d'activité incomplet")
			require.NoError(t, err, out)
			assert.Contains(t, out, "Recorded interaction")

			out, err = runRosa(t, "interaction", "add", "--repo", dir, id,
				"--type", "HOME_VISIT", "--title", "Visite à domicile",
				"--changes", "Dossier FSL déposé", "--follow-up-date", "2024-02-15")
			require.NoError(t, err, out)

			out, err = runRosa(t, "interaction", "list", "--repo", dir, id)
			require.NoError(t, err, out)
			assert.Contains(t, out, "Appel CAF")
			assert.Contains(t, out, "PHONE")
			assert.Contains(t, out, "2024-02-15")
			assert.Contains(t, out, "Dossier de prime")

			out, err = runRosa(t, "interaction", "list", "--repo", dir, id, "--follow-up")
			require.NoError(t, err, out)
			assert.Contains(t, out, "Visite à domicile")
			assert.NotContains(t, out, "Appel CAF")

			out, err = runRosa(t, "ledger", "history", "--repo", dir, id, "--action", "add_interaction")
			require.NoError(t, err, out)
			assert.Equal(t, 2, strings.Count(out, "add_interaction"))
		})
	}
}

func TestInteraction_AddRejected(t *testing.T) {
	dir := initProject(t, "csv")
	id := addBeneficiary(t, dir, "--period", "2024-01")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing title", []string{"--type", "email"}, "title"},
		{"unknown type", []string{"--type", "fax", "--title", "Fax"}, "unknown interaction type"},
		{"bad follow-up date", []string{"--title", "Point", "--follow-up-date", "15/02/2024"}, "YYYY-MM-DD"},
		{"period not in ledger", []string{"--title", "Point", "--period", "2023-06"}, "period not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"interaction", "add", "--repo", dir, id}, tt.args...)
			out, err := runRosa(t, args...)
			require.Error(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	out, err := runRosa(t, "interaction", "list", "--repo", dir, id)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No interactions.")
}
