// Package password encapsula el hashing de contraseñas con bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost es el work factor de bcrypt. 10 es el valor histórico de la app;
// subirlo invalida benchmarks pero no los hashes ya guardados (bcrypt
// codifica el cost en el propio hash).
const Cost = 10

// Hash deriva un hash salteado e irreversible del password en claro.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("password: empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara un password en claro contra un hash guardado.
// bcrypt hace la comparación en tiempo constante sobre el digest.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
