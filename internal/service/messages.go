package service

import "fmt"

// MessageKind identifies a user-facing message template
type MessageKind int

const (
	MsgRequiredField MessageKind = iota
	MsgNotNonEmptyList
	MsgTagNotPositive
	MsgTagDuplicate
	MsgTagUnknown
	MsgAmountRequired
	MsgIDRequired
	MsgAmountNotPositive
	MsgIngredientDuplicate
	MsgIngredientUnknown
	MsgFavoriteDuplicate
	MsgFavoriteMissing
	MsgCartDuplicate
	MsgCartMissing
	MsgSubscriptionDuplicate
	MsgSubscriptionMissing
	MsgSelfSubscription
	MsgUsernameForbidden
	MsgUsernameChars
	MsgSlugChars
	MsgMaxLength
	MsgMinValue
	MsgNotInteger
	MsgInvalidEmail
	MsgInvalidImage
	MsgRecipeNameTaken
	MsgUsernameTaken
	MsgEmailTaken
	MsgInvalidCredentials
	MsgWrongPassword
	MsgNotAuthor
	MsgRecipeNotFound
	MsgUserNotFound
	MsgTagNotFound
	MsgIngredientNotFound
	MsgEmptyCart
)

// Messages is the single table of user-facing message templates. Templates
// take fmt verbs filled by the error constructors.
var Messages = map[MessageKind]string{
	MsgRequiredField:         "Обязательное поле.",
	MsgNotNonEmptyList:       "%v должен быть не пустым списком!",
	MsgTagNotPositive:        "%v должен быть целым числом больше нуля!",
	MsgTagDuplicate:          "Дублирование тега %v в запросе!",
	MsgTagUnknown:            "Такого тега %v не существует!",
	MsgAmountRequired:        "amount обязательное поле для ингредиента %v.",
	MsgIDRequired:            "id обязательное поле для ингредиента %v.",
	MsgAmountNotPositive:     "Значение amount для ингредиента %v должно быть целым и больше нуля!",
	MsgIngredientDuplicate:   "Дублирование ингредиента %v в запросе!",
	MsgIngredientUnknown:     "Такого ингредиента %v не существует!",
	MsgFavoriteDuplicate:     "Дублирование рецепта %v в избранном!",
	MsgFavoriteMissing:       "Рецепта %v нет в избранном!",
	MsgCartDuplicate:         "Рецепт %v уже добавлен в корзину",
	MsgCartMissing:           "Рецепта %v нет в корзине!",
	MsgSubscriptionDuplicate: "Дублирование подписки на автора %v!",
	MsgSubscriptionMissing:   "У пользователя %v нет подписки на автора %v!",
	MsgSelfSubscription:      "Попытка самоподписки пользователя %v на автора %v!",
	MsgUsernameForbidden:     "Нельзя создать пользователя с именем: << %v >> - это имя запрещено!",
	MsgUsernameChars:         "%v недопустимые символы в имени пользователя %v.",
	MsgSlugChars:             "%v недопустимые символы в слаге тега %v.",
	MsgMaxLength:             "Убедитесь, что это значение содержит не более %d символов.",
	MsgMinValue:              "Убедитесь, что это значение больше либо равно %d.",
	MsgNotInteger:            "Введите правильное число.",
	MsgInvalidEmail:          "Введите правильный адрес электронной почты.",
	MsgInvalidImage:          "Загрузите правильное изображение.",
	MsgRecipeNameTaken:       "Рецепт с таким названием уже существует.",
	MsgUsernameTaken:         "Пользователь с таким именем уже существует.",
	MsgEmailTaken:            "Пользователь с таким адресом электронной почты уже существует.",
	MsgInvalidCredentials:    "Невозможно войти с предоставленными учетными данными.",
	MsgWrongPassword:         "Неверный текущий пароль.",
	MsgNotAuthor:             "Изменять и удалять рецепт может только его автор.",
	MsgRecipeNotFound:        "Рецепт %v не найден.",
	MsgUserNotFound:          "Пользователь %v не найден.",
	MsgTagNotFound:           "Тег %v не найден.",
	MsgIngredientNotFound:    "Ингредиент %v не найден.",
	MsgEmptyCart:             "У вас нет рецептов в корзине",
}

// Format renders a message template with its arguments
func Format(kind MessageKind, args ...interface{}) string {
	tmpl, ok := Messages[kind]
	if !ok {
		return fmt.Sprintf("message %d", kind)
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
