// Package services implements the driving port interfaces.
// Services contain the medicine identification and drug-safety logic and
// reach storage, embeddings and LLMs only through driven ports.
//
// Services are pure Go with no CGO.
package services
