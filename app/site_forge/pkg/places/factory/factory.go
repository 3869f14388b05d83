package factory

import (
	"fmt"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/config"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/gplaces"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/placefile"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/places"
)

// NewDirectory 根据配置创建商户目录实例
func NewDirectory(cfg *config.Config) (places.Directory, error) {
	provider := cfg.Places.Provider
	if provider == "" {
		// 默认回退逻辑：如果有 google key，则使用 google
		if cfg.Places.Google.APIKey != "" {
			provider = "google"
		} else {
			return nil, fmt.Errorf("places provider not configured")
		}
	}

	switch provider {
	case "google":
		g := cfg.Places.Google
		if g.APIKey == "" {
			return nil, fmt.Errorf("google places api key is missing")
		}
		var opts []gplaces.Option
		if g.BaseURL != "" {
			opts = append(opts, gplaces.WithBaseURL(g.BaseURL))
		}
		return gplaces.NewClient(g.APIKey, g.Timeout, opts...), nil

	case "fixture":
		if cfg.Places.Fixture.Path == "" {
			return nil, fmt.Errorf("places fixture path is missing")
		}
		c, err := placefile.Load(cfg.Places.Fixture.Path)
		if err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unknown places provider: %s", provider)
	}
}
