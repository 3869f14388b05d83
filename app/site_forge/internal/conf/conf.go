package conf

import "github.com/iWorld-y/site_forge/app/site_forge/pkg/config"

type Bootstrap struct {
	Server *Server
	// Forge 流水线配置，字段与 configs/config.yaml 中 forge 段一致
	Forge *config.Config
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}
