package language

import (
	"context"
	"fmt"
	"regexp"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mystorage"
)

const DefaultLanguage = "es"

var languagePattern = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

type Language struct {
	Language string `json:"language" form:"language"`
}

// Service keeps the language of the visitor. The value is stored as is, not
// as json.
type Service struct {
	storage mystorage.Storage
	logger  mylog.Logger
}

func NewService(storage mystorage.Storage) *Service {
	return &Service{
		storage: storage,
		logger:  mylog.New("language"),
	}
}

func (s *Service) Get(c context.Context) string {
	lang, found, err := s.storage.GetItem(c, mystorage.KeyLanguage)
	if err != nil {
		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityError, "Error loading language: %s", err)
		return DefaultLanguage
	}
	if !found || lang == "" {
		return DefaultLanguage
	}
	return lang
}

func (s *Service) Change(c context.Context, lang string) error {
	if !languagePattern.MatchString(lang) {
		return myerrors.NewInvalidInputError(fmt.Errorf("invalid language %q", lang))
	}
	return s.storage.SetItem(c, mystorage.KeyLanguage, lang)
}
