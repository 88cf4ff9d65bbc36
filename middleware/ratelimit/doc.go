// Package ratelimit fornece adapters HTTP (net/http) para rate limit e limite de concorrência.
//
// Camadas:
//
//   - domain: contratos e tipos (sem net/http)
//   - application: casos de uso (janela fixa, token bucket, acquire com timeout)
//   - infra: implementações concretas (memória, Redis, x/time/rate, semáforo)
//   - ratelimit (este pacote): middlewares HTTP, extração da chave do cliente e
//     tradução da decisão para status/headers/corpo JSON
//
// O /chat não usa estes middlewares: o limite dele é um soft-fail dentro do gateway
// (responde 200 com mensagem). O /tts usa Middleware (429) e ConcurrencyMiddleware (503).
package ratelimit
