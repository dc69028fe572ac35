package recipes

// Command is a catalog write: either CreateRecipe or UpdateRecipe.
type Command interface {
	recipeCommand()
}

// CreateRecipe adds a new recipe with its initial bill of materials.
type CreateRecipe struct {
	Name        string
	Description string
	Lines       []Line
}

// UpdateRecipe replaces name, description and the entire bill of materials of recipe ID.
type UpdateRecipe struct {
	ID          string
	Name        string
	Description string
	Lines       []Line
}

func (CreateRecipe) recipeCommand() {}
func (UpdateRecipe) recipeCommand() {}
