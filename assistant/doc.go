// Package assistant expõe o gateway de chat e o relay de TTS por HTTP (chi).
//
// Rotas:
//   - POST /chat: sempre 200, exceto JSON inválido (400)
//   - POST /tts: áudio em caso de sucesso, JSON {"error"} com status real nos demais
//   - GET /stats, GET /healthz
package assistant
