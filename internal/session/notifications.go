package session

import (
	"fmt"

	"github.com/fjod/goldshop/internal/domain"
)

func notice(title, description string) domain.Notification {
	return domain.Notification{Title: title, Description: description, Variant: domain.VariantDefault}
}

func alert(title, description string) domain.Notification {
	return domain.Notification{Title: title, Description: description, Variant: domain.VariantDestructive}
}

func addedToCart(name string) domain.Notification {
	return notice("Добавлено в корзину", fmt.Sprintf("%s добавлен в корзину", name))
}

var (
	removedFromCart  = notice("Удалено", "Товар удален из корзины")
	cartIsEmpty      = alert("Корзина пуста", "Добавьте товары в корзину")
	invalidPlayerID  = alert("Ошибка", "Введите корректный ID игрока (минимум 5 символов)")
	paymentSucceeded = notice("✅ Успешно!", "Оплата прошла успешно. Золото зачислено на ваш аккаунт.")
	promoAccepted    = notice("Промокод активирован", "Открыт доступ к журналу покупок")
	promoRejected    = alert("Неверный промокод", "Проверьте код и попробуйте снова")
	reviewIncomplete = alert("Ошибка", "Заполните имя и текст отзыва")
	reviewBadRating  = alert("Ошибка", "Оценка должна быть от 1 до 5")
	reviewPublished  = notice("Спасибо за отзыв!", "Ваш отзыв опубликован")
	reviewFailed     = alert("Ошибка", "Не удалось отправить отзыв. Попробуйте позже")
)
