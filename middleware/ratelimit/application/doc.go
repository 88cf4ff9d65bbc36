// Package application contém os casos de uso (regras de aplicação) para rate limit
// e limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: WindowService.Decide(ctx, key) retorna uma Decision (allow/deny + contagem + retry-after).
package application
