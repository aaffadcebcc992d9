package translator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var Translator *i18n.Bundle

type Config struct {
	TranslationFolder  string
	SupportedLanguages []string
}

const (
	LanguageEn = "en"
	LanguageEs = "es"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})

func InitTranslator(cfg Config) {
	Translator = i18n.NewBundle(language.English)
	Translator.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if len(cfg.SupportedLanguages) > 0 {
		tags := make([]language.Tag, 0, len(cfg.SupportedLanguages))
		for _, lang := range cfg.SupportedLanguages {
			tag, err := language.Parse(lang)
			if err != nil {
				zap.L().Warn("unsupported language tag", zap.String("lang", lang), zap.Error(err))
				continue
			}
			tags = append(tags, tag)
		}
		if len(tags) > 0 {
			matcher = language.NewMatcher(tags)
		}
	}

	lstFiles, err := os.ReadDir(cfg.TranslationFolder)
	if err != nil {
		zap.L().Error("failed to list translation folder", zap.String("folder", cfg.TranslationFolder), zap.Error(err))
		return
	}

	for _, f := range lstFiles {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".toml") {
			continue
		}
		if _, err := Translator.LoadMessageFile(filepath.Join(cfg.TranslationFolder, f.Name())); err != nil {
			zap.L().Warn("failed to load translation file", zap.String("file", f.Name()), zap.Error(err))
		}
	}
}

// Match picks the best supported base language for an Accept-Language header.
func Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return LanguageEn
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LanguageEn
	}
	tag, _, _ := matcher.Match(tags...)
	base, _ := tag.Base()
	return base.String()
}
