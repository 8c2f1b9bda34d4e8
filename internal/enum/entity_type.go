package enum

type EntityType string

const (
	EMAIL EntityType = "EMAIL"
)

func (entityType EntityType) String() string {
	return string(entityType)
}
