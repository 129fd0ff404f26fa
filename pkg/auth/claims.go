package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ActorID uuid.UUID
	PartyID *uuid.UUID
	Role    enums.ActorRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients. PartyID is
// only present for bidders; operators and viewers act without one.
type AccessTokenClaims struct {
	ActorID uuid.UUID       `json:"actor_id"`
	PartyID *uuid.UUID      `json:"party_id,omitempty"`
	Role    enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
