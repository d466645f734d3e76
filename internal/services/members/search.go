package members

import (
	"strings"

	"github.com/Jidetireni/sanctuary-access/internal/constants"
	"github.com/Jidetireni/sanctuary-access/internal/dto"
	"github.com/Jidetireni/sanctuary-access/internal/repository"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/Jidetireni/sanctuary-access/internal/services/users"
)

type SearchMode string

const (
	SearchModeWildcard SearchMode = "wildcard"
	SearchModeEmail    SearchMode = "email"
	SearchModeLastName SearchMode = "last_name"
	SearchModeInitial  SearchMode = "initial"
)

// ResolveSearch turns the form fields into a repository filter:
//
//   - last name "*" lists everything, admins only
//   - an email other than the requester's own looks that email up
//   - otherwise the last name is matched as a substring, and with no last name
//     the requester's own record is looked up by their login email
func ResolveSearch(input dto.SearchInput, requester *users.UserContextValue) (SearchMode, repository.MemberRepositoryFilter, error) {
	if requester == nil {
		return "", repository.MemberRepositoryFilter{}, svc.UnauthorizedError()
	}

	lastName := strings.TrimSpace(input.LastName)
	email := strings.TrimSpace(input.Email)

	if lastName == constants.WildcardLastName {
		if !requester.IsAuthenticatedAsAdmin {
			return "", repository.MemberRepositoryFilter{}, svc.AdminForbiddenError("list every access request")
		}
		return SearchModeWildcard, repository.MemberRepositoryFilter{}, nil
	}

	if email != "" && !strings.EqualFold(email, requester.Email) {
		return SearchModeEmail, repository.MemberRepositoryFilter{Email: &email}, nil
	}

	if lastName != "" {
		return SearchModeLastName, repository.MemberRepositoryFilter{LastNameContains: &lastName}, nil
	}

	own := requester.Email
	return SearchModeInitial, repository.MemberRepositoryFilter{Email: &own}, nil
}
