package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func TenantKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s", tenantID)
}

func TenantSlugKey(slug string) string {
	return fmt.Sprintf("tenant:slug:%s", slug)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
