package app

import (
	"context"
	"errors"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/heartmarshall/couplefine/pkg/client/api"
	"github.com/heartmarshall/couplefine/pkg/client/applock"
	"github.com/heartmarshall/couplefine/pkg/client/session"
)

// Message keys.
const (
	msgUnknown      = "unknown"
	msgNetwork      = "network"
	msgTimeout      = "timeout"
	msgUnauthorized = "unauthorized"
	msgForbidden    = "forbidden"
	msgNotFound     = "not_found"
	msgConflict     = "conflict"
	msgValidation   = "validation"
	msgRateLimited  = "rate_limited"
	msgServer       = "server"
	msgNoSession    = "no_session"
	msgInvalidPin   = "invalid_pin"
	msgNoPin        = "no_pin"
	msgWrongPin     = "wrong_pin"
	msgBlocked      = "blocked"
)

var messages = map[language.Tag]map[string]string{
	language.Korean: {
		msgUnknown:      "알 수 없는 오류가 발생했습니다.",
		msgNetwork:      "네트워크 연결을 확인해주세요.",
		msgTimeout:      "요청 시간이 초과되었습니다. 다시 시도해주세요.",
		msgUnauthorized: "로그인이 필요합니다.",
		msgForbidden:    "권한이 없습니다.",
		msgNotFound:     "요청한 항목을 찾을 수 없습니다.",
		msgConflict:     "다른 곳에서 변경되었습니다. 새로고침 후 다시 시도해주세요.",
		msgValidation:   "입력값을 확인해주세요.",
		msgRateLimited:  "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
		msgServer:       "서버 오류가 발생했습니다.",
		msgNoSession:    "로그인이 필요합니다.",
		msgInvalidPin:   "PIN은 숫자 4자리여야 합니다.",
		msgNoPin:        "설정된 PIN이 없습니다.",
		msgWrongPin:     "PIN이 일치하지 않습니다. 남은 시도: %d회",
		msgBlocked:      "시도 횟수를 초과했습니다. %d분 후에 다시 시도해주세요.",
	},
	language.English: {
		msgUnknown:      "Something went wrong.",
		msgNetwork:      "Check your network connection.",
		msgTimeout:      "The request timed out. Please try again.",
		msgUnauthorized: "Please sign in.",
		msgForbidden:    "You are not allowed to do that.",
		msgNotFound:     "The item could not be found.",
		msgConflict:     "This was changed elsewhere. Refresh and try again.",
		msgValidation:   "Please check your input.",
		msgRateLimited:  "Too many requests. Please wait a moment.",
		msgServer:       "The server ran into a problem.",
		msgNoSession:    "Please sign in.",
		msgInvalidPin:   "The PIN must be 4 digits.",
		msgNoPin:        "No PIN is set.",
		msgWrongPin:     "Wrong PIN. %d attempts left.",
		msgBlocked:      "Too many attempts. Try again in %d minutes.",
	},
}

func newCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.Korean))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// Translator renders errors as user-facing text.
type Translator struct {
	printer *message.Printer
}

// NewTranslator returns a Translator for lang, a BCP 47 tag. Unknown or
// empty tags fall back to Korean.
func NewTranslator(lang string) (*Translator, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	tag := language.Korean
	if parsed, err := language.Parse(lang); err == nil {
		if base, _ := parsed.Base(); base.String() == "en" {
			tag = language.English
		}
	}
	return &Translator{printer: message.NewPrinter(tag, message.Catalog(cat))}, nil
}

// Message returns the localized text for err, or "" for nil.
func (t *Translator) Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		blocked *applock.BlockedError
		wrong   *applock.WrongPinError
	)
	switch {
	case errors.As(err, &blocked):
		return t.printer.Sprintf(msgBlocked, int(math.Ceil(blocked.Remaining.Minutes())))
	case errors.As(err, &wrong):
		return t.printer.Sprintf(msgWrongPin, wrong.Remaining)
	case errors.Is(err, applock.ErrInvalidPin):
		return t.printer.Sprintf(msgInvalidPin)
	case errors.Is(err, applock.ErrNoPin):
		return t.printer.Sprintf(msgNoPin)
	case errors.Is(err, session.ErrNoSession):
		return t.printer.Sprintf(msgNoSession)
	case errors.Is(err, context.DeadlineExceeded):
		return t.printer.Sprintf(msgTimeout)
	case api.IsNetwork(err):
		return t.printer.Sprintf(msgNetwork)
	case errors.Is(err, api.ErrUnauthorized):
		return t.printer.Sprintf(msgUnauthorized)
	case errors.Is(err, api.ErrForbidden):
		return t.printer.Sprintf(msgForbidden)
	case errors.Is(err, api.ErrNotFound):
		return t.printer.Sprintf(msgNotFound)
	case errors.Is(err, api.ErrConflict):
		return t.printer.Sprintf(msgConflict)
	case errors.Is(err, api.ErrValidation):
		return t.printer.Sprintf(msgValidation)
	case errors.Is(err, api.ErrRateLimited):
		return t.printer.Sprintf(msgRateLimited)
	case errors.Is(err, api.ErrServer):
		return t.printer.Sprintf(msgServer)
	}
	return t.printer.Sprintf(msgUnknown)
}
