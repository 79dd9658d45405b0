// Package psu drives a Hanmatek HM3xxP bench power supply over Modbus RTU.
//
// A Session performs the model and decimals handshake once at Open and then
// resolves every read or write through the channel map: a Channel (Output,
// Preset, Protection, Info, M1..M6) and a Quantity (voltage, current, power,
// auxiliary words) name exactly one register. Physical values are validated
// against the model's bounds and scaled with the device-reported decimals
// before any transaction is issued.
package psu
