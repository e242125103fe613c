package bot

import "github.com/rs/cors"

func corsHandler() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:     []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:             60, // 1 minutes
		AllowCredentials:   false,
		OptionsPassthrough: false,
		Debug:              false,
	})
}
