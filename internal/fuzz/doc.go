// Package fuzztests houses Go fuzz harnesses for the epScript pipeline:
// raw bytes go through the lexer on their own and through the whole driver.
//
// Назначение: ловить паники и зависания на произвольном вводе.
//
// Не делает: запись артефактов, запуск CLI.
package fuzztests
