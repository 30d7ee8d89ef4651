package anubis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/domain/player"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

// StaticVerifier trusts the bearer token as a player id. Local development
// only; config rejects it in prod.
//
// Token format: "<player_id>[:admin]".
type StaticVerifier struct{}

func NewStaticVerifier() StaticVerifier {
	return StaticVerifier{}
}

func (StaticVerifier) VerifyAccessToken(_ context.Context, token string) (player.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return player.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	playerID, flag, _ := strings.Cut(token, ":")
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Principal{}, fmt.Errorf("%w: player id is required", usecase.ErrUnauthorized)
	}

	privileged := strings.EqualFold(strings.TrimSpace(flag), adminRole)
	if !privileged && flag != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(flag)); err == nil {
			privileged = parsed
		}
	}
	return player.Principal{PlayerID: playerID, DisplayName: playerID, Privileged: privileged}, nil
}
