package output

import "articlegen/internal/domain/entity"

type AgentRegistry interface {
	Register(agent entity.Agent)
	Get(role string) (entity.Agent, bool)
	List() []entity.Agent
}
