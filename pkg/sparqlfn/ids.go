package sparqlfn

import "github.com/google/uuid"

// URIExistsChecker reports whether a Resource row already exists for uri,
// used by Uuid/Bnode to avoid colliding with a persisted id.
type URIExistsChecker interface {
	URIExists(uri string) (bool, error)
}

const maxUUIDAttempts = 16

// Uuid implements uuid(prefix): generates "{prefix}:{v4-uuid}", regenerating
// while checker reports an existing Resource row for the candidate URI. It
// makes at most maxUUIDAttempts tries and then returns an error.
func Uuid(prefix string, checker URIExistsChecker) (string, error) {
	return generateUniqueID(prefix, checker)
}

// Bnode implements bnode(): same generation pattern with the fixed prefix
// "urn:bnode".
func Bnode(checker URIExistsChecker) (string, error) {
	return generateUniqueID("urn:bnode", checker)
}

func generateUniqueID(prefix string, checker URIExistsChecker) (string, error) {
	for attempt := 0; attempt < maxUUIDAttempts; attempt++ {
		candidate := prefix + ":" + uuid.New().String()
		exists, err := checker.URIExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", errTooManyCollisions(prefix)
}

type errTooManyCollisions string

func (e errTooManyCollisions) Error() string {
	return "sparqlfn: exhausted attempts generating a unique id for prefix " + string(e)
}
