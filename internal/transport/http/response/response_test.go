package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_DefaultAndCustomMsg(t *testing.T) {
	r := Error(CodeNotFound, "")
	assert.Equal(t, "Not Found", r.Msg)
	assert.Equal(t, struct{}{}, r.Data)

	r = Error(CodeConflict, "email taken")
	assert.Equal(t, 409, r.Code)
	assert.Equal(t, "email taken", r.Msg)
}

func TestOK_NilData(t *testing.T) {
	r := OK(nil)
	assert.Equal(t, CodeOK, r.Code)
	assert.Equal(t, struct{}{}, r.Data)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, Status(CodeOK))
	assert.Equal(t, http.StatusTooManyRequests, Status(CodeTooManyRequests))
	assert.Equal(t, http.StatusInternalServerError, Status(7))
}
