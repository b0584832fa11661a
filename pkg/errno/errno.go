package errno

import (
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// ErrCode doubles as the HTTP status written to the client.
const (
	SuccessCode          = consts.StatusOK
	ParamErrCode         = consts.StatusBadRequest
	AuthorizationErrCode = consts.StatusUnauthorized
	NotFoundErrCode      = consts.StatusNotFound
	TooManyRequestsCode  = consts.StatusTooManyRequests
	ServiceErrCode       = consts.StatusInternalServerError
)

type ErrNo struct {
	ErrCode int64
	ErrMsg  string
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{code, msg}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

// Is matches on ErrCode so that errors.Is(err, NotFoundErr) holds for any
// message attached with WithMessage.
func (e ErrNo) Is(target error) bool {
	t, ok := target.(ErrNo)
	if !ok {
		return false
	}
	return e.ErrCode == t.ErrCode
}

var (
	Success                = NewErrNo(SuccessCode, "Success")
	ParamErr               = NewErrNo(ParamErrCode, "Wrong Parameter has been given")
	AuthorizationFailedErr = NewErrNo(AuthorizationErrCode, "Authorization failed")
	NotFoundErr            = NewErrNo(NotFoundErrCode, "Resource not found")
	TooManyRequestsErr     = NewErrNo(TooManyRequestsCode, "Too many requests, please try again later")
	ServiceErr             = NewErrNo(ServiceErrCode, "Internal server error")
)

// ConvertErr convert error to ErrNo. Errors that carry no ErrNo collapse to
// ServiceErr; their text is not echoed back to the client.
func ConvertErr(err error) ErrNo {
	if err == nil {
		return Success
	}
	Err := ErrNo{}
	if errors.As(err, &Err) {
		return Err
	}
	return ServiceErr
}

// IsClientErr reports whether err maps to a 4xx status.
func IsClientErr(err error) bool {
	code := ConvertErr(err).ErrCode
	return code >= 400 && code < 500
}
