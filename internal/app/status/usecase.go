package status

import (
	"context"
	"errors"
	"strings"

	"crusoe/internal/app/ports"
	"crusoe/internal/app/stateview"
)

var ErrInvalidRequest = errors.New("invalid status request")

type UseCase struct {
	AgentRepo ports.AgentRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	agentID := strings.TrimSpace(req.AgentID)
	if agentID == "" {
		return Response{}, ErrInvalidRequest
	}
	rec, err := u.AgentRepo.GetByAgentID(ctx, agentID)
	if err != nil {
		return Response{}, err
	}
	return Response{Agent: stateview.Derive(rec)}, nil
}
