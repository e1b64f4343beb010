package config

import "go.uber.org/fx"

// Module отдаёт *Config. Ошибка валидации роняет старт fx-приложения,
// до тиков дело не доходит.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
		),
	)
}
