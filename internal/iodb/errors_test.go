package iodb

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionError(t *testing.T) {
	originalErr := errors.New("connection refused")
	err := ConnectionError("localhost", 5432, "crba", "postgres", originalErr)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")
	assert.Equal(t, errcode.DBConnectionError, gnErr.Code)
	assert.Len(t, gnErr.Vars, 5)
	assert.Equal(t, "crba", gnErr.Vars[0])
	assert.ErrorIs(t, gnErr.Err, originalErr)
}

func TestErrors(t *testing.T) {
	cause := errors.New("query failed")
	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		vars int
	}{
		{"table check", TableCheckError(cause), errcode.DBTableCheckError, 0},
		{"not connected", NotConnectedError(), errcode.DBNotConnectedError, 0},
		{
			"table exists",
			TableExistsCheckError("observations", cause),
			errcode.DBTableExistsCheckError, 1,
		},
		{
			"drop table",
			DropTableError("observations", cause),
			errcode.DBDropTableError, 1,
		},
	}

	for _, v := range tests {
		gnErr, ok := v.err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, v.code, gnErr.Code, v.msg)
		assert.Len(t, gnErr.Vars, v.vars, v.msg)
		assert.NotEmpty(t, gnErr.Msg, v.msg)
		if v.vars > 0 {
			assert.Equal(t, "observations", gnErr.Vars[0], v.msg)
			assert.ErrorIs(t, gnErr.Err, cause, v.msg)
		}
	}
}

func TestNotConnected(t *testing.T) {
	op := NewPgxOperator()
	_, err := op.TableExists(t.Context(), "observations")
	assert.Error(t, err)
	_, err = op.HasTables(t.Context(), []string{"observations"})
	assert.Error(t, err)
	err = op.DropTables(t.Context(), []string{"observations"})
	assert.Error(t, err)
	assert.NoError(t, op.Close())
}
