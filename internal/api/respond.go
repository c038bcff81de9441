package api

import (
	"alcyxob/dieta-core/internal/result"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgInternalError = "Internal server error occurred. Please try again later."

// responder writes service results. A fault is logged once here and, unless
// detailed is set, replaced by a generic message.
type responder struct {
	log      *zap.Logger
	detailed bool
}

// send writes r as the envelope, or a Fail envelope when err is set.
func send[T any](c *gin.Context, rs responder, r result.Result[T], err error) {
	if err != nil {
		rs.fault(c, err)
		return
	}
	c.JSON(r.Code.HTTPStatus(), r)
}

func (rs responder) fault(c *gin.Context, err error) {
	rs.log.Error("request failed",
		zap.String("requestID", requestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	message := msgInternalError
	if rs.detailed {
		message = err.Error()
	}
	abortWith(c, result.Fail, message)
}

// abortWith stops the chain with a payload-less envelope.
func abortWith(c *gin.Context, code result.Code, message string) {
	c.AbortWithStatusJSON(code.HTTPStatus(), result.Failure[any](code, message))
}

// bind decodes and validates the JSON body into req. On failure it writes
// a BadRequest envelope and returns false.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWith(c, result.BadRequest, validationMessage(err))
		return false
	}
	return true
}

// pathID reads a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWith(c, result.BadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}
