package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repograph/internal/model"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success("run-1", data, func(io.Writer) error {
		t.Fatal("text renderer called in json mode")
		return nil
	})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.Run)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("run-1", nil, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "Materialized 3 builds")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "Materialized 3 builds\n", buf.String())
}

func TestOutputFormatter_JSONErrorCarriesModelCode(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(wrapModelError("invalid --dir", model.NotADirectory("/tmp/x")))
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_A_DIRECTORY", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "invalid --dir")
}

func TestOutputFormatter_JSONErrorWithoutModelCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{NewExitError(ExitCommandError, "bad flag"), "COMMAND_ERROR"},
		{WrapExitError(ExitFailure, "write failed", errors.New("disk full")), "FAILURE"},
	}
	for _, tt := range tests {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, formatter.Error(tt.err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, tt.code, resp.Error.Code)
	}
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Error(NewExitError(ExitFailure, "scan failed")))
	assert.Equal(t, "Error: scan failed\n", buf.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "bad"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestWrapModelError(t *testing.T) {
	assert.Equal(t, ExitCommandError, wrapModelError("x", model.NotFound("/a")).Code)
	assert.Equal(t, ExitCommandError, wrapModelError("x", model.IsADirectory("/a")).Code)
	assert.Equal(t, ExitFailure, wrapModelError("x", model.IdentityCorruption("project", "app", 2)).Code)
	assert.Equal(t, ExitFailure, wrapModelError("x", errors.New("io")).Code)
}

func TestExitError_Unwrap(t *testing.T) {
	inner := model.NotFound("/a")
	err := WrapExitError(ExitCommandError, "open", inner)
	assert.True(t, model.IsNotFound(err))
	assert.Equal(t, "open: "+inner.Error(), err.Error())
}
