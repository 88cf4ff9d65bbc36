// Package infra contém implementações concretas para os contratos do pacote domain.
//
//   - Store: token bucket por chave usando golang.org/x/time/rate
//   - MemoryWindowCounter / RedisWindowCounter: janela fixa por chave (processo único / compartilhada)
//   - MemoryStatsStore / RedisStatsStore: contadores de allowed/denied
//   - ChanPool: semáforo simples para limite de concorrência
package infra
