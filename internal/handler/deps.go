package handler

import (
	"gorelay/internal/app/relay"
	"gorelay/internal/configs"
)

type AppDeps struct {
	Hub       *relay.Hub
	Lifecycle *relay.Lifecycle
	Config    *configs.AppConfig
}
