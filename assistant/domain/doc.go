// Package domain define os tipos do assistente (pedido, resposta, histórico) e os
// contratos dos colaboradores externos: modelo de linguagem, TTS e log de conversas.
//
// Assim como middleware/ratelimit/domain, não depende de net/http nem de SDKs.
package domain
