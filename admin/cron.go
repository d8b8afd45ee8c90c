package admin

import (
	"context"

	"github.com/robfig/cron/v3"

	"versare/common"
)

// StartSessionPurge agenda a limpeza de sessões vencidas a cada hora.
// O chamador deve chamar Stop no encerramento.
func StartSessionPurge(auth *AuthService) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc("@hourly", func() {
		removed, err := auth.PurgeExpired(context.Background())
		if err != nil {
			common.Logger.WithError(err).Error("Erro ao limpar sessões vencidas")
			return
		}
		if removed > 0 {
			common.Logger.WithField("removed", removed).Info("Sessões vencidas removidas")
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
