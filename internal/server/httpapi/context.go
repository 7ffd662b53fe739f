package httpapi

import "context"

type contextKey int

const operatorKey contextKey = iota

func withOperator(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, operatorKey, userID)
}

func operatorFrom(ctx context.Context) string {
	id, _ := ctx.Value(operatorKey).(string)
	return id
}
