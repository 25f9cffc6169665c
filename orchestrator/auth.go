// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// sessionIdentity resolves the session user for a request. With no signing
// secret configured the caller-supplied user id is trusted, which is the
// demo deployment mode. With a secret configured the identity comes only
// from a valid bearer token; anything else is an anonymous session, which
// the access validator denies for account-scoped queries.
func sessionIdentity(r *http.Request, bodyUserID, secret string) string {
	if secret == "" {
		return bodyUserID
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	raw := strings.TrimPrefix(auth, "Bearer ")

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		return uid
	}
	return ""
}
