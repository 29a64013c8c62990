package render

import (
	"boostlend/handler/codes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/twitchtv/twirp"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render.JSON")
	}
}

// Text render with text
func Text(w http.ResponseWriter, t string) {
	w.Header().Set("Content-Type", "application/text")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(t)); err != nil {
		logrus.WithError(err).Errorln("render.Text")
	}
}

// Error write err with the http status of its twirp code
func Error(w http.ResponseWriter, err error) {
	twerr := codes.Twirp(err)

	code, _ := strconv.Atoi(twerr.Meta(codes.CustomCodeKey))
	if code == 0 {
		code = codes.Get(twerr.Code())
	}

	resp := errorResponse{Code: code, Msg: twerr.Msg()}
	if twerr.Code() == twirp.Internal {
		logrus.WithError(err).Errorln("render.Error")
		resp.Msg = "internal error"
		if ResponseErrorMessageAsHint {
			resp.Hint = twerr.Msg()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(twirp.ServerHTTPStatusFromErrorCode(twerr.Code()))
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Errorln("render.Error")
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.NewError(twirp.InvalidArgument, err.Error()))
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.NotFoundError(err.Error()))
}
