package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/beyondbeauty/press/logger"
	"github.com/beyondbeauty/press/util/common"
	"github.com/beyondbeauty/press/web/entity"
)

func jsonObj(c *gin.Context, status int, msg string, obj any) {
	c.JSON(status, entity.Msg{Success: true, Msg: msg, Obj: obj})
}

func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{Success: success, Msg: msg})
}

// jsonError translates err into a status code and a client-facing message.
// Unexpected errors are logged and reported without detail.
func jsonError(c *gin.Context, err error) {
	var (
		validationErr *common.ValidationError
		slugErr       *common.DuplicateSlugError
		accountErr    *common.DuplicateAccountError
		notFoundErr   *common.NotFoundError
		assetErr      *common.InvalidAssetError
		cryptoErr     *common.CryptoError
	)

	switch {
	case errors.As(err, &validationErr):
		pureJsonMsg(c, http.StatusBadRequest, false, validationErr.Error())
	case errors.As(err, &slugErr):
		pureJsonMsg(c, http.StatusConflict, false, slugErr.Error())
	case errors.As(err, &accountErr):
		pureJsonMsg(c, http.StatusConflict, false, accountErr.Error())
	case errors.As(err, &notFoundErr):
		pureJsonMsg(c, http.StatusNotFound, false, notFoundErr.Error())
	case errors.As(err, &assetErr):
		status := http.StatusBadRequest
		if assetErr.TooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		pureJsonMsg(c, status, false, assetErr.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		pureJsonMsg(c, http.StatusUnauthorized, false, "Invalid credentials")
	case errors.As(err, &cryptoErr):
		logger.Error("crypto failure:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "Server error")
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "Server error")
	}
}

// bindError turns a gin binding failure into a ValidationError naming the
// offending fields.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return common.NewValidationError("invalid fields", fields...)
	}
	return common.NewValidationError("malformed request body: " + err.Error())
}

func paramId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("invalid id", "id")
	}
	return id, nil
}
