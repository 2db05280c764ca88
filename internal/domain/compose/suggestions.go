package compose

// MaxSuggestions es el tope de sugerencias de "a quién seguir".
const MaxSuggestions = 3

type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

type Follow struct {
	ID          string `json:"id,omitempty"`
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}

// SuggestFollows excluye al usuario actual y a los ya seguidos, y trunca a max
// respetando el orden de users. max <= 0 usa MaxSuggestions.
func SuggestFollows(users []User, currentUserID string, following []string, max int) []User {
	if max <= 0 {
		max = MaxSuggestions
	}
	skip := make(map[string]struct{}, len(following)+1)
	skip[currentUserID] = struct{}{}
	for _, id := range following {
		skip[id] = struct{}{}
	}

	out := make([]User, 0, max)
	for _, u := range users {
		if len(out) == max {
			break
		}
		if _, ok := skip[u.ID]; ok {
			continue
		}
		out = append(out, u)
	}
	return out
}
