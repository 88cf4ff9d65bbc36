// Package domain define contratos e tipos de domínio para rate limit, janela fixa,
// estatísticas e limite de concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas (memória, Redis).
// O gateway do chat e os middlewares HTTP conversam com a infra apenas por estas interfaces.
package domain
